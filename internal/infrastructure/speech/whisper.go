package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/doeshing/osai-go/internal/domain"
	"github.com/doeshing/osai-go/internal/ports"
)

const defaultWhisperEndpoint = "https://api.openai.com/v1/audio/transcriptions"

// WhisperTranscriber converts recorded audio to text through the OpenAI
// transcription API.
type WhisperTranscriber struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewWhisperTranscriber builds a transcriber. Model defaults to whisper-1;
// the API key is read from OPENAI_API_KEY when empty.
func NewWhisperTranscriber(endpoint, model, apiKey string) *WhisperTranscriber {
	if endpoint == "" {
		endpoint = defaultWhisperEndpoint
	}
	if model == "" {
		model = domain.DefaultTranscribeModel
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return &WhisperTranscriber{
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: domain.DefaultHTTPClientTimeout,
		},
	}
}

// Available reports whether transcription can be attempted.
func (w *WhisperTranscriber) Available() bool {
	return w.apiKey != ""
}

// Transcribe implements ports.Transcriber.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if !w.Available() {
		return "", fmt.Errorf("transcription unavailable: OPENAI_API_KEY not set")
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy audio into form: %w", err)
	}
	if err := writer.WriteField("model", w.model); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, &requestBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription API status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("parse transcription response: %w", err)
	}
	return apiResp.Text, nil
}

var _ ports.Transcriber = (*WhisperTranscriber)(nil)
