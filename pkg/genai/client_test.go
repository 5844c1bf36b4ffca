package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-admin-api/internal/models"
	"github.com/noah-isme/timetable-admin-api/pkg/config"
	appErrors "github.com/noah-isme/timetable-admin-api/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(config.AIConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		Model:          "gemini-3-pro-preview",
		ThinkingBudget: 2048,
	}, zap.NewNop())
	return client, server
}

func candidateBody(text string) string {
	body := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{"parts": []map[string]string{{"text": text}}}},
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func TestExtractTimetableSuccess(t *testing.T) {
	extraction := `{
		"detectedType": "CLASS_WISE",
		"profiles": [{"name": "10A", "schedule": {"Monday": {"1": {"subject": "math", "room": "S1", "code": "JD"}}}}],
		"unknownCodes": ["JD"]
	}`

	var captured map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateBody(extraction)))
	})

	result, dropped, err := client.ExtractTimetable(context.Background(), ExtractionInput{Text: "timetable text"})
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, models.DetectedClassWise, result.DetectedType)
	require.Len(t, result.Profiles, 1)
	assert.Equal(t, "MATH", result.Profiles[0].Schedule["Mon"]["1"].Subject)
	assert.Equal(t, []string{"JD"}, result.UnknownCodes)

	// request carries the JSON response contract and a system instruction
	genCfg, ok := captured["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "application/json", genCfg["responseMimeType"])
	assert.NotNil(t, captured["systemInstruction"])
}

func TestExtractTimetableMissingProfiles(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateBody(`{"detectedType": "TEACHER_WISE"}`)))
	})

	result, _, err := client.ExtractTimetable(context.Background(), ExtractionInput{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, models.DetectedTeacherWise, result.DetectedType)
	assert.Empty(t, result.Profiles)
	assert.Empty(t, result.UnknownCodes)
}

func TestExtractTimetableEmptyResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, _, err := client.ExtractTimetable(context.Background(), ExtractionInput{Text: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrEmptyAIResponse.Code, appErrors.FromError(err).Code)
}

func TestExtractTimetableMalformedJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateBody("not json at all")))
	})

	_, _, err := client.ExtractTimetable(context.Background(), ExtractionInput{Text: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedAIOutput.Code, appErrors.FromError(err).Code)
}

func TestExtractTimetableUpstreamErrorMessagePreserved(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "Quota exceeded for quota metric", "status": "RESOURCE_EXHAUSTED"}}`))
	})

	_, _, err := client.ExtractTimetable(context.Background(), ExtractionInput{Text: "x"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrAIUnavailable.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "Quota")
}

func TestExtractTimetableRequiresInput(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued without input")
	})

	_, _, err := client.ExtractTimetable(context.Background(), ExtractionInput{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGenerateText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateBody("hello there")))
	})

	text, err := client.GenerateText(context.Background(), "system", "prompt", 1024)
	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
}
