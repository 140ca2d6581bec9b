package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// тело ошибки Deepgram читаем не целиком
const maxDeepgramErrorBody = 4 << 10

// DeepgramClient is the alternative speech-to-text backend (STT_PROVIDER=deepgram).
// The query string of url selects model and language.
type DeepgramClient struct {
	apiKey string
	url    string
	client *http.Client
}

func NewDeepgramClient(apiKey, url string) *DeepgramClient {
	return &DeepgramClient{
		apiKey: apiKey,
		url:    url,
		client: &http.Client{},
	}
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

func (r deepgramResponse) transcript() (string, bool) {
	if len(r.Results.Channels) == 0 || len(r.Results.Channels[0].Alternatives) == 0 {
		return "", false
	}
	return r.Results.Channels[0].Alternatives[0].Transcript, true
}

// Transcribe streams the spooled upload to Deepgram as the raw request body.
func (c *DeepgramClient) Transcribe(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat audio: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, f)
	if err != nil {
		return "", fmt.Errorf("build deepgram request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", audioContentType(filePath))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxDeepgramErrorBody))
		if readErr != nil {
			return "", fmt.Errorf("deepgram status %d: read body: %w", resp.StatusCode, readErr)
		}
		return "", fmt.Errorf("deepgram status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed deepgramResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode deepgram: %w", err)
	}

	text, ok := parsed.transcript()
	if !ok {
		return "", errors.New("deepgram: no alternatives in response")
	}
	return text, nil
}

func audioContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ogg", ".oga":
		return "audio/ogg"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".m4a", ".mp4":
		return "audio/mp4"
	}
	return "audio/webm"
}
