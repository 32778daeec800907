package services

import (
	"fmt"
	"strings"

	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/tidwall/gjson"
)

const candidateTextPath = "candidates.0.content.parts.0.text"

// ParseRoast extracts the roast JSON from a generateContent response body.
//
// The candidate text may be wrapped in ```json fences. Any missing piece is [shared.ErrMalformedResponse].
func ParseRoast(body []byte) (*models.Roast, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: response is not JSON", shared.ErrMalformedResponse)
	}

	text := gjson.GetBytes(body, candidateTextPath)
	if !text.Exists() || text.Type != gjson.String {
		return nil, fmt.Errorf("%w: no candidate text in %s", shared.ErrMalformedResponse, excerpt(body))
	}

	raw := StripFences(text.String())
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return nil, fmt.Errorf("%w: candidate text is not a JSON object: %s", shared.ErrMalformedResponse, excerpt([]byte(raw)))
	}

	fields := gjson.GetMany(raw, "title", "body")
	roast := &models.Roast{
		Title: strings.TrimSpace(fields[0].String()),
		Body:  strings.TrimSpace(fields[1].String()),
	}

	if err := roast.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	return roast, nil
}

// StripFences removes every ```json and ``` marker and trims the result.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func excerpt(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
