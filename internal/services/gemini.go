// Gemini implementation of [RoastGenerator]
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/roastify/internal/models"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/tidwall/gjson"
)

const (
	DefaultGeminiModel   = "gemini-1.5-flash"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	generateContentMethod = "generateContent"
	invalidKeyMarker      = "API key not valid"
)

var (
	_ RoastGenerator = (*GeminiService)(nil)
	_ ModelLister    = (*GeminiService)(nil)
)

// Attempt is a state of the generation retry policy.
type Attempt int

const (
	AttemptDefault    Attempt = iota // first call, against the configured model
	AttemptDiscovered                // single retry, against the discovered model
	Terminal                         // no further calls
)

func (a Attempt) String() string {
	switch a {
	case AttemptDefault:
		return "default"
	case AttemptDiscovered:
		return "discovered"
	case Terminal:
		return "terminal"
	default:
		return fmt.Sprintf("attempt(%d)", int(a))
	}
}

// Model is an entry of the models listing.
type Model struct {
	Name             string   `json:"name"`
	DisplayName      string   `json:"displayName"`
	Description      string   `json:"description"`
	SupportedMethods []string `json:"supportedGenerationMethods"`
}

// ID returns the model name without the "models/" prefix.
func (m Model) ID() string {
	return strings.TrimPrefix(m.Name, "models/")
}

// SupportsGeneration reports whether the model accepts generateContent.
func (m Model) SupportsGeneration() bool {
	for _, method := range m.SupportedMethods {
		if method == generateContentMethod {
			return true
		}
	}
	return false
}

// SelectModel returns the ID of the first model that supports generateContent and whose name mentions
// flash, pro or gemini. Returns fallback when nothing matches.
func SelectModel(models []Model, fallback string) string {
	for _, m := range models {
		if !m.SupportsGeneration() {
			continue
		}
		if strings.Contains(m.Name, "flash") || strings.Contains(m.Name, "pro") || strings.Contains(m.Name, "gemini") {
			return m.ID()
		}
	}
	return fallback
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type apiResponse struct {
	status int
	body   []byte
}

func (r *apiResponse) ok() bool {
	return r.status >= 200 && r.status < 300
}

// GeminiService generates roasts with the Gemini generateContent API.
type GeminiService struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *log.Logger
}

// NewGeminiService creates a new [GeminiService]. Empty config fields use the package defaults.
func NewGeminiService(cfg shared.GeminiConfig, timeout time.Duration, logger *log.Logger) *GeminiService {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GeminiService{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     shared.WithLogger(logger, "service", "gemini"),
	}
}

// Name returns the name of the service
func (g *GeminiService) Name() string {
	return "Gemini"
}

// Model returns the configured default model.
func (g *GeminiService) Model() string {
	return g.model
}

// Generate asks the model to roast tracks.
//
// A failed first attempt, including a 2xx reply that does not parse, triggers
// one model discovery and one retry. The retry's outcome is final.
func (g *GeminiService) Generate(ctx context.Context, credential string, tracks []models.Track) (*models.Roast, error) {
	if credential == "" {
		return nil, shared.ErrMissingCredential
	}

	prompt := BuildPrompt(tracks)
	model := g.model

	for state := AttemptDefault; ; {
		g.logger.Debug("generating roast", "attempt", state, "model", model)
		roast, err := g.attempt(ctx, credential, model, prompt)
		if err == nil || state != AttemptDefault || ctx.Err() != nil {
			return roast, err
		}

		g.logger.Warn("default model failed, trying discovery", "model", model, "error", err)
		model = g.discover(ctx, credential)
		state = AttemptDiscovered
	}
}

// attempt runs one generateContent call and classifies its outcome. A 2xx
// body that does not parse into a roast is a failed attempt.
func (g *GeminiService) attempt(ctx context.Context, credential, model, prompt string) (*models.Roast, error) {
	resp, err := g.generateContent(ctx, credential, model, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: generateContent: %v", shared.ErrAPIRequest, err)
	}

	g.logger.Debug("gemini raw response", "model", model, "status", resp.status, "body", string(resp.body))
	return classify(resp)
}

// ListModels returns every model visible to credential.
func (g *GeminiService) ListModels(ctx context.Context, credential string) ([]Model, error) {
	if credential == "" {
		return nil, shared.ErrMissingCredential
	}

	resp, err := g.do(ctx, http.MethodGet, g.endpoint("/models", credential), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list models: %v", shared.ErrAPIRequest, err)
	}
	if !resp.ok() {
		if isInvalidCredential(resp) {
			return nil, shared.ErrCredentialInvalid
		}
		return nil, fmt.Errorf("%w: list models: status %d: %s", shared.ErrAPIRequest, resp.status, excerpt(resp.body))
	}

	var out []Model
	gjson.GetBytes(resp.body, "models").ForEach(func(_, value gjson.Result) bool {
		m := Model{
			Name:        value.Get("name").String(),
			DisplayName: value.Get("displayName").String(),
			Description: value.Get("description").String(),
		}
		for _, method := range value.Get("supportedGenerationMethods").Array() {
			m.SupportedMethods = append(m.SupportedMethods, method.String())
		}
		out = append(out, m)
		return true
	})

	return out, nil
}

// discover picks a generation model, falling back to the configured default on any failure.
func (g *GeminiService) discover(ctx context.Context, credential string) string {
	available, err := g.ListModels(ctx, credential)
	if err != nil {
		g.logger.Warn("failed to list models", "error", err)
		return g.model
	}

	model := SelectModel(available, g.model)
	g.logger.Debug("discovered model", "model", model, "available", len(available))
	return model
}

func (g *GeminiService) generateContent(ctx context.Context, credential, model, prompt string) (*apiResponse, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	path := "/models/" + url.PathEscape(model) + ":" + generateContentMethod
	return g.do(ctx, http.MethodPost, g.endpoint(path, credential), payload)
}

func (g *GeminiService) endpoint(path, credential string) string {
	return g.baseURL + path + "?" + url.Values{"key": {credential}}.Encode()
}

func (g *GeminiService) do(ctx context.Context, method, endpoint string, payload []byte) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &apiResponse{status: resp.StatusCode, body: data}, nil
}

func classify(resp *apiResponse) (*models.Roast, error) {
	switch {
	case resp.ok():
		return ParseRoast(resp.body)
	case isInvalidCredential(resp):
		return nil, shared.ErrCredentialInvalid
	default:
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.status, excerpt(resp.body))
	}
}

func isInvalidCredential(resp *apiResponse) bool {
	return resp.status == http.StatusBadRequest || bytes.Contains(resp.body, []byte(invalidKeyMarker))
}
