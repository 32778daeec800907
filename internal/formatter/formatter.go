// package formatter renders a roast and its evidence list as plain text, Markdown, JSON, or CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatText, FormatMarkdown, FormatJSON, FormatCSV}

// ParseFormat accepts a format name (case-insensitive, "md" for Markdown).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want text, markdown, json or csv)", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	default:
		return ".txt"
	}
}

// ExportText renders the evidence list followed by the roast.
func ExportText(result *models.RoastResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: result is nil", shared.ErrInvalidArgument)
	}

	var buf bytes.Buffer

	buf.WriteString("EVIDENCE (YOUR TOP HITS)\n\n")
	for i, track := range result.Tracks {
		fmt.Fprintf(&buf, "#%d  %s\n    %s\n", i+1, track.Name, track.PrimaryArtist())
	}

	fmt.Fprintf(&buf, "\n%s\n\n%s\n", strings.ToUpper(result.Roast.Title), result.Roast.Body)

	return buf.Bytes(), nil
}

// ExportMarkdown renders the roast as a Markdown document with thumbnail links.
func ExportMarkdown(result *models.RoastResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: result is nil", shared.ErrInvalidArgument)
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", result.Roast.Title)
	fmt.Fprintf(&buf, "%s\n\n", result.Roast.Body)

	buf.WriteString("## Evidence (Your Top Hits)\n\n")
	for i, track := range result.Tracks {
		thumb := ""
		if url := track.Thumbnail(); url != "" {
			thumb = fmt.Sprintf("![%s](%s) ", escapeMarkdown(track.Name), url)
		}
		fmt.Fprintf(&buf, "%d. %s**%s** by %s\n", i+1, thumb, escapeMarkdown(track.Name), escapeMarkdown(track.PrimaryArtist()))
	}

	return buf.Bytes(), nil
}

// ExportJSON renders the result as indented JSON.
func ExportJSON(result *models.RoastResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: result is nil", shared.ErrInvalidArgument)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportCSV renders the evidence list with columns: Rank, ID, Name, Artist, Album, Thumbnail
func ExportCSV(result *models.RoastResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: result is nil", shared.ErrInvalidArgument)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Rank", "ID", "Name", "Artist", "Album", "Thumbnail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range result.Tracks {
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Name,
			track.PrimaryArtist(),
			track.Album.Name,
			track.Thumbnail(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// Render dispatches to the formatter for f.
func Render(result *models.RoastResult, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return ExportText(result)
	case FormatMarkdown:
		return ExportMarkdown(result)
	case FormatJSON:
		return ExportJSON(result)
	case FormatCSV:
		return ExportCSV(result)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// Write renders result and writes it to w.
func Write(w io.Writer, result *models.RoastResult, f Format) error {
	data, err := Render(result, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteResult renders result to the file at path, creating parent directories.
//
// A path without an extension gets the format's extension. Returns the path written.
func WriteResult(result *models.RoastResult, f Format, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: output path is empty", shared.ErrMissingArgument)
	}
	if filepath.Ext(path) == "" {
		path += f.Extension()
	}

	data, err := Render(result, f)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return path, nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "`", "\\`",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
