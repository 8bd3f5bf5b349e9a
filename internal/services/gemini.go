package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"habbitgold/internal/models"
)

const (
	defaultModel   = "gemini-3-flash-preview"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// GeminiService calls the generative AI backend for evidence verification and
// the data scan. Both calls fail open: any transport or parse error is masked
// by a deterministic fallback so the flow always completes for the user.
// A single attempt is made per call; nothing is retried.
type GeminiService struct {
	client  *http.Client
	apiKey  string
	model   string
	baseURL string
	logger  *slog.Logger
}

func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{
		client:  &http.Client{Timeout: 15 * time.Second},
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		logger:  slog.Default(),
	}
}

// WithBaseURL points the service at a different endpoint. Used by tests.
func (s *GeminiService) WithBaseURL(baseURL string) *GeminiService {
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

type generateRequest struct {
	Contents         []content       `json:"contents"`
	GenerationConfig *generateConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateConfig struct {
	ResponseMimeType string          `json:"response_mime_type"`
	ResponseSchema   json.RawMessage `json:"response_schema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var verificationSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"verified": {"type": "BOOLEAN"},
		"confidence": {"type": "NUMBER"},
		"feedback": {"type": "STRING"}
	},
	"required": ["verified", "confidence", "feedback"]
}`)

var scanSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"healthScore": {"type": "NUMBER"},
		"productivityScore": {"type": "NUMBER"},
		"consistencyScore": {"type": "NUMBER"},
		"summary": {"type": "STRING"},
		"recommendations": {"type": "ARRAY", "items": {"type": "STRING"}}
	},
	"required": ["healthScore", "productivityScore", "consistencyScore", "summary", "recommendations"]
}`)

// VerifyCompletion asks the model whether the submitted media shows the habit
// being completed. On any failure the verdict defaults to accepted.
func (s *GeminiService) VerifyCompletion(ctx context.Context, habitTitle, mediaBase64, mimeType string) models.VerificationResult {
	fallback := models.VerificationResult{
		Verified:   true,
		Confidence: 1,
		Feedback:   "Offline verification enabled.",
	}

	kind := "image"
	if strings.HasPrefix(mimeType, "video") {
		kind = "video"
	}
	// Accept data URLs as submitted by the client; only the payload is sent.
	if i := strings.IndexByte(mediaBase64, ','); i >= 0 {
		mediaBase64 = mediaBase64[i+1:]
	}

	prompt := fmt.Sprintf(`You are a HabbitGold habit verification assistant. The user claims they have completed the task: %q.
Analyze the attached %s and determine if it realistically shows evidence of this task being completed.
Return a JSON response.`, habitTitle, kind)

	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{MimeType: mimeType, Data: mediaBase64}},
		}}},
		GenerationConfig: &generateConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   verificationSchema,
		},
	}

	var result models.VerificationResult
	if err := s.generate(ctx, req, &result); err != nil {
		s.logger.Warn("evidence verification failed, using fallback", slog.Any("err", err))
		return fallback
	}
	if result.Feedback == "" {
		result.Feedback = "Unable to analyze media content."
	}
	return result
}

// RunDataScan produces the three scores, summary, and recommendations over
// the full habit and history data. On failure a fixed canned result is
// returned.
func (s *GeminiService) RunDataScan(ctx context.Context, habits []models.Habit, history []models.HistoryItem) models.ScanResult {
	fallback := models.ScanResult{
		HealthScore:       85,
		ProductivityScore: 78,
		ConsistencyScore:  92,
		Summary:           "Your HabbitGold data shows strong morning consistency. You are on track for a weekly bonus.",
		Recommendations:   []string{"Complete one more Health task", "Stick to your schedule", "Verify your evening habit"},
	}

	habitsJSON, _ := json.Marshal(habits)
	historyJSON, _ := json.Marshal(history)
	prompt := fmt.Sprintf(`Perform a HabbitGold Deep Data Scan of this user's habit tracking performance.
Current Habits: %s
Completion History: %s

Calculate a Health Score, Productivity Score, and Consistency Score (0-100).
Provide a professional summary of their growth and 3 specific recommendations for earning more points.
Return only valid JSON.`, habitsJSON, historyJSON)

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generateConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   scanSchema,
		},
	}

	var result models.ScanResult
	if err := s.generate(ctx, req, &result); err != nil {
		s.logger.Warn("data scan failed, using fallback", slog.Any("err", err))
		return fallback
	}
	return result
}

func (s *GeminiService) generate(ctx context.Context, payload generateRequest, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, s.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return err
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("gemini returned no candidates")
	}
	return json.Unmarshal([]byte(gr.Candidates[0].Content.Parts[0].Text), out)
}
