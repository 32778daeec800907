package models

import "testing"

func TestTrack(t *testing.T) {
	t.Run("PrimaryArtist", func(t *testing.T) {
		tt := []struct {
			name  string
			track Track
			want  string
		}{
			{name: "first of many", track: Track{Artists: []Artist{{Name: "SZA"}, {Name: "Travis Scott"}}}, want: "SZA"},
			{name: "no artists", track: Track{}, want: "Unknown Artist"},
			{name: "blank name", track: Track{Artists: []Artist{{Name: ""}}}, want: "Unknown Artist"},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				if got := tc.track.PrimaryArtist(); got != tc.want {
					t.Errorf("PrimaryArtist() = %q, want %q", got, tc.want)
				}
			})
		}
	})

	t.Run("Thumbnail", func(t *testing.T) {
		three := Track{Album: Album{Images: []Image{{URL: "640"}, {URL: "300"}, {URL: "64"}}}}
		if got := three.Thumbnail(); got != "64" {
			t.Errorf("expected smallest image, got %q", got)
		}

		two := Track{Album: Album{Images: []Image{{URL: "640"}, {URL: "300"}}}}
		if got := two.Thumbnail(); got != "300" {
			t.Errorf("expected last image, got %q", got)
		}

		if got := (Track{}).Thumbnail(); got != "" {
			t.Errorf("expected empty thumbnail, got %q", got)
		}
	})
}

func TestRoastValidate(t *testing.T) {
	if err := (Roast{Title: "X", Body: "Y"}).Validate(); err != nil {
		t.Errorf("expected valid roast, got %v", err)
	}
	if err := (Roast{Title: " ", Body: "Y"}).Validate(); err == nil {
		t.Error("expected error for blank title")
	}
	if err := (Roast{}).Validate(); err == nil {
		t.Error("expected error for empty roast")
	}
}

func TestStateKey(t *testing.T) {
	for _, k := range StateKeys {
		if !k.Valid() {
			t.Errorf("expected %s to be valid", k)
		}
	}
	if StateKey("refresh_token").Valid() {
		t.Error("expected unknown key to be invalid")
	}
}
