package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

// Client is a thin wrapper around the generateContent endpoint. Exactly one
// request is issued per invocation; the caller owns retry policy (there is
// none for extractions).
type Client struct {
	httpClient *http.Client
	cfg        config.AIConfig
	logger     *zap.Logger
}

// ExtractionInput carries either pasted text or an inline document.
type ExtractionInput struct {
	Text     string
	Base64   string
	MIMEType string
}

// NewClient builds the generative model client.
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		logger:     logger,
	}
}

type requestPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *inlineDataPart `json:"inlineData,omitempty"`
}

type inlineDataPart struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ThinkingConfig   *thinkingConfig `json:"thinkingConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type generateRequest struct {
	Contents          []requestContent `json:"contents"`
	SystemInstruction *requestContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// extractionPayload mirrors the JSON shape the system instruction demands.
type extractionPayload struct {
	DetectedType string                                   `json:"detectedType"`
	Profiles     []struct {
		Name     string                            `json:"name"`
		Schedule map[string]map[string]rawSlot     `json:"schedule"`
	} `json:"profiles"`
	UnknownCodes []string `json:"unknownCodes"`
}

type rawSlot struct {
	Subject string `json:"subject"`
	Room    string `json:"room"`
	Code    string `json:"code"`
}

// ExtractTimetable sends one extraction request and returns the normalized
// result plus the number of slots dropped during normalization.
func (c *Client) ExtractTimetable(ctx context.Context, input ExtractionInput) (*models.AiImportResult, int, error) {
	var parts []requestPart
	switch {
	case input.Base64 != "" && input.MIMEType != "":
		parts = append(parts,
			requestPart{InlineData: &inlineDataPart{Data: input.Base64, MIMEType: input.MIMEType}},
			requestPart{Text: documentFollowUp},
		)
	case input.Text != "":
		parts = append(parts, requestPart{Text: input.Text})
	default:
		return nil, 0, appErrors.Clone(appErrors.ErrValidation, "either text or a document is required")
	}

	req := generateRequest{
		Contents:          []requestContent{{Parts: parts}},
		SystemInstruction: &requestContent{Parts: []requestPart{{Text: timetableSystemInstruction}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ThinkingConfig:   &thinkingConfig{ThinkingBudget: c.cfg.ThinkingBudget},
		},
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrMalformedAIOutput.Code, appErrors.ErrMalformedAIOutput.Status, appErrors.ErrMalformedAIOutput.Message)
	}

	detected := models.DetectedType(payload.DetectedType)
	if detected != models.DetectedTeacherWise {
		detected = models.DetectedClassWise
	}

	result := &models.AiImportResult{
		DetectedType:    detected,
		Profiles:        []models.ExtractedProfile{},
		UnknownCodes:    payload.UnknownCodes,
		RawTextResponse: text,
	}
	if result.UnknownCodes == nil {
		result.UnknownCodes = []string{}
	}

	// A response without profiles is "nothing found", not a failure.
	dropped := 0
	for _, p := range payload.Profiles {
		schedule, d := normalizeSchedule(p.Schedule)
		dropped += d
		result.Profiles = append(result.Profiles, models.ExtractedProfile{Name: p.Name, Schedule: schedule})
	}

	return result, dropped, nil
}

// GenerateText issues a plain text generation call (assistant flow).
func (c *Client) GenerateText(ctx context.Context, systemInstruction, prompt string, thinkingBudget int) (string, error) {
	req := generateRequest{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &requestContent{Parts: []requestPart{{Text: systemInstruction}}}
	}
	if thinkingBudget > 0 {
		req.GenerationConfig = &generationConfig{ThinkingConfig: &thinkingConfig{ThinkingBudget: thinkingBudget}}
	}
	return c.generate(ctx, req)
}

func (c *Client) generate(ctx context.Context, payload generateRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode AI request")
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build AI request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, fmt.Sprintf("AI request failed: %v", err))
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, "failed to read AI response")
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode == http.StatusOK {
		return "", appErrors.Wrap(err, appErrors.ErrMalformedAIOutput.Code, appErrors.ErrMalformedAIOutput.Status, appErrors.ErrMalformedAIOutput.Message)
	}

	if resp.StatusCode != http.StatusOK {
		// Keep the upstream message verbatim so callers can surface quota or
		// API key remediation hints.
		message := fmt.Sprintf("AI service returned status %d", resp.StatusCode)
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		c.logger.Warn("ai request rejected", zap.Int("status", resp.StatusCode), zap.String("message", message))
		return "", appErrors.New(appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, message)
	}

	text := ""
	if len(parsed.Candidates) > 0 {
		for _, part := range parsed.Candidates[0].Content.Parts {
			text += part.Text
		}
	}
	if text == "" {
		return "", appErrors.Clone(appErrors.ErrEmptyAIResponse, "")
	}

	return text, nil
}
