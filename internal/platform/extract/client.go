// Package extract is the HTTP client for the external extraction and
// grounding backend. The backend owns criterion extraction, vocabulary
// grounding and mapping persistence; this service consumes its JSON API.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/ET-NoahDolev/medgemma-hackathon-sub000/internal/domain/mapping"
)

// ProtocolSummary is one row of the backend's protocol listing.
type ProtocolSummary struct {
	ProtocolID       string  `json:"protocol_id"`
	Title            string  `json:"title"`
	ProcessingStatus string  `json:"processing_status"`
	ProcessedCount   int     `json:"processed_count"`
	TotalEstimated   int     `json:"total_estimated"`
	ProgressMessage  *string `json:"progress_message,omitempty"`
}

// GroundingCandidate is one ranked vocabulary code for a criterion.
type GroundingCandidate struct {
	Code       string  `json:"code"`
	Display    string  `json:"display"`
	Confidence float64 `json:"confidence"`
}

// FieldSuggestion is one ranked (field, value) pair for free text.
type FieldSuggestion struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FeedbackRequest mirrors the backend's single-operation feedback endpoint.
// Each call is atomic on the server; there is no batch endpoint.
type FeedbackRequest struct {
	CriterionID         string                `json:"criterion_id"`
	Action              string                `json:"action"`
	SnomedCodeAdded     string                `json:"snomed_code_added,omitempty"`
	SnomedCodeRemoved   string                `json:"snomed_code_removed,omitempty"`
	FieldMappingAdded   *mapping.FieldMapping `json:"field_mapping_added,omitempty"`
	FieldMappingRemoved *mapping.FieldMapping `json:"field_mapping_removed,omitempty"`
}

// MappingEdits carries the structured-edit payload for edit-mapping.
type MappingEdits struct {
	Entity      string `json:"entity"`
	Relation    string `json:"relation"`
	Value       string `json:"value"`
	Unit        string `json:"unit,omitempty"`
	UMLSConcept string `json:"umls_concept,omitempty"`
	UMLSID      string `json:"umls_id,omitempty"`
	SnomedCode  string `json:"snomed_code,omitempty"`
}

// EditMappingRequest is the edit-mapping endpoint's body.
type EditMappingRequest struct {
	User  string       `json:"user"`
	Edits MappingEdits `json:"edits"`
}

// Client talks to the extraction backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// SetHTTPClient overrides the underlying HTTP client. Tests use this to
// shorten timeouts.
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// ListProtocols fetches a page of protocol summaries.
func (c *Client) ListProtocols(ctx context.Context, skip, limit int) ([]ProtocolSummary, error) {
	u := fmt.Sprintf("%s/protocols?skip=%d&limit=%d", c.baseURL, skip, limit)
	var out []ProtocolSummary
	if err := c.getJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ground asks the backend for vocabulary candidates for a criterion.
func (c *Client) Ground(ctx context.Context, criterionID string) ([]GroundingCandidate, error) {
	u := fmt.Sprintf("%s/criteria/%s/ground", c.baseURL, url.PathEscape(criterionID))
	var out struct {
		Candidates []GroundingCandidate `json:"candidates"`
	}
	if err := c.postJSON(ctx, u, map[string]string{}, &out); err != nil {
		return nil, err
	}
	return out.Candidates, nil
}

// SendFeedback submits a single add/remove operation for a criterion.
func (c *Client) SendFeedback(ctx context.Context, criterionID string, req FeedbackRequest) error {
	u := fmt.Sprintf("%s/criteria/%s/feedback", c.baseURL, url.PathEscape(criterionID))
	return c.postJSON(ctx, u, req, nil)
}

// EditMapping submits a structured mapping edit for a criterion.
func (c *Client) EditMapping(ctx context.Context, criterionID string, req EditMappingRequest) error {
	u := fmt.Sprintf("%s/criteria/%s/edit-mapping", c.baseURL, url.PathEscape(criterionID))
	return c.postJSON(ctx, u, req, nil)
}

// SuggestFields asks the backend for ranked field/value suggestions for
// free text.
func (c *Client) SuggestFields(ctx context.Context, text string) ([]FieldSuggestion, error) {
	u := c.baseURL + "/field-mapping/suggest"
	var out struct {
		Suggestions []FieldSuggestion `json:"suggestions"`
	}
	if err := c.postJSON(ctx, u, map[string]string{"text": text}, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, string(snippet))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}
