package services

import (
	"fmt"
	"strings"

	"github.com/desertthunder/roastify/internal/models"
)

// roastPrompt's leading newline and indentation are part of the text sent.
// Track list lines after the first are flush left.
const roastPrompt = "\n" +
	"    You are a brutal, Gen Z mean girl / internet troll. Roast this user based on their top 5 Spotify songs.\n" +
	"    \n" +
	"    User's Top Tracks:\n" +
	"    %s\n" +
	"\n" +
	"    Format the response as a JSON object with two fields:\n" +
	"    1. \"title\": A short, savage 3-5 word insult title.\n" +
	"    2. \"body\": A paragraph (3-4 sentences) effectively ending their whole career. " +
	"Use slang like \"cooked\", \"mid\", \"npc\", \"red flag\". Be specific about the artists.\n" +
	"    \n" +
	"    Output JSON only.\n" +
	"  "

// BuildPrompt renders the roast instructions for tracks. It is a pure function of its input.
func BuildPrompt(tracks []models.Track) string {
	return fmt.Sprintf(roastPrompt, TrackList(tracks))
}

// TrackList renders "{n}. {name} by {first artist}" lines, numbered from 1.
func TrackList(tracks []models.Track) string {
	lines := make([]string, len(tracks))
	for i, t := range tracks {
		lines[i] = fmt.Sprintf("%d. %s by %s", i+1, t.Name, t.PrimaryArtist())
	}
	return strings.Join(lines, "\n")
}
