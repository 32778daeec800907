package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/shared"
	th "github.com/desertthunder/roastify/internal/testing"
)

func sampleResult() *models.RoastResult {
	return &models.RoastResult{Tracks: th.SampleTracks(), Roast: *th.SampleRoast()}
}

func TestFormatters(t *testing.T) {
	t.Run("FormatText", func(t *testing.T) {
		data, err := ExportText(sampleResult())
		if err != nil {
			t.Fatalf("FormatText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"EVIDENCE (YOUR TOP HITS)",
			"#1  Espresso\n    Sabrina Carpenter",
			"#5  Pink Pony Club",
			"CERTIFIED POP GIRLIE NPC",
			"you are cooked.",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text output missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("FormatMarkdown", func(t *testing.T) {
		data, err := ExportMarkdown(sampleResult())
		if err != nil {
			t.Fatalf("FormatMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "# Certified Pop Girlie NPC\n") {
			t.Errorf("expected title heading, got:\n%s", output)
		}
		if !strings.Contains(output, "1. ![Espresso](https://i.scdn.co/image/64) **Espresso** by Sabrina Carpenter") {
			t.Errorf("expected smallest thumbnail for first track, got:\n%s", output)
		}
		if !strings.Contains(output, "4. ![Good Luck, Babe!](https://i.scdn.co/image/640)") {
			t.Errorf("expected fallback thumbnail for fourth track, got:\n%s", output)
		}
		if !strings.Contains(output, "5. **Pink Pony Club** by Chappell Roan") {
			t.Errorf("expected no image for fifth track, got:\n%s", output)
		}
	})

	t.Run("FormatMarkdown Escapes", func(t *testing.T) {
		result := &models.RoastResult{
			Tracks: []models.Track{{Name: "*NSYNC_Song", Artists: []models.Artist{{Name: "[x]"}}}},
			Roast:  models.Roast{Title: "T", Body: "B"},
		}
		data, _ := ExportMarkdown(result)
		if !strings.Contains(string(data), `**\*NSYNC\_Song** by \[x\]`) {
			t.Errorf("expected escaped markdown, got:\n%s", data)
		}
	})

	t.Run("FormatJSON", func(t *testing.T) {
		data, err := ExportJSON(sampleResult())
		if err != nil {
			t.Fatalf("FormatJSON failed: %v", err)
		}

		var decoded models.RoastResult
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Roast.Title != "Certified Pop Girlie NPC" || len(decoded.Tracks) != 5 {
			t.Errorf("unexpected decoded result %+v", decoded)
		}
		if !bytes.Contains(data, []byte(`"title": "Certified Pop Girlie NPC"`)) {
			t.Errorf("expected indented title field, got:\n%s", data)
		}
	})

	t.Run("FormatCSV", func(t *testing.T) {
		data, err := ExportCSV(sampleResult())
		if err != nil {
			t.Fatalf("FormatCSV failed: %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		if err != nil {
			t.Fatalf("invalid CSV: %v", err)
		}
		if len(records) != 6 {
			t.Fatalf("expected header + 5 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Rank,ID,Name,Artist,Album,Thumbnail" {
			t.Errorf("unexpected headers %v", records[0])
		}
		if records[4][2] != "Good Luck, Babe!" {
			t.Errorf("expected quoted name to survive, got %q", records[4][2])
		}
	})

	t.Run("Nil Result", func(t *testing.T) {
		for _, f := range Formats {
			if _, err := Render(nil, f); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("%s: expected ErrInvalidArgument, got %v", f, err)
			}
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"TEXT", FormatText, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{" csv ", FormatCSV, false},
		{"yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	t.Run("Writer", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, sampleResult(), FormatText); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Espresso") {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("Failing Writer", func(t *testing.T) {
		if err := Write(&th.FWriter{}, sampleResult(), FormatText); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("Unknown Format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Write(&buf, sampleResult(), Format("xml")); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestWriteResult(t *testing.T) {
	t.Run("Adds Extension And Directories", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "out", "roast")
		path, err := WriteResult(sampleResult(), FormatMarkdown, base)
		if err != nil {
			t.Fatalf("WriteResult failed: %v", err)
		}
		if path != base+".md" {
			t.Errorf("expected .md extension, got %s", path)
		}
		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.Contains(content, "# Certified Pop Girlie NPC") {
			t.Errorf("unexpected file content:\n%s", content)
		}
	})

	t.Run("Keeps Explicit Extension", func(t *testing.T) {
		want := filepath.Join(t.TempDir(), "roast.txt")
		path, err := WriteResult(sampleResult(), FormatJSON, want)
		if err != nil {
			t.Fatalf("WriteResult failed: %v", err)
		}
		if path != want {
			t.Errorf("expected %s, got %s", want, path)
		}
	})

	t.Run("Empty Path", func(t *testing.T) {
		if _, err := WriteResult(sampleResult(), FormatText, ""); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
