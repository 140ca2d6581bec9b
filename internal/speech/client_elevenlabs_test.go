package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabsSynthesize(t *testing.T) {
	var got ttsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "xi-key", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-mp3-bytes"))
	}))
	defer srv.Close()

	client := NewElevenLabsClient("xi-key", srv.URL+"/v1/", "voice-1", "eleven_monolingual_v1",
		VoiceSettings{Stability: 0.5, SimilarityBoost: 0.7})

	audio, err := client.Synthesize(context.Background(), "Hi there!")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-mp3-bytes"), audio)

	assert.Equal(t, "Hi there!", got.Text)
	assert.Equal(t, "eleven_monolingual_v1", got.ModelID)
	assert.Equal(t, 0.5, got.VoiceSettings.Stability)
	assert.Equal(t, 0.7, got.VoiceSettings.SimilarityBoost)
}

func TestElevenLabsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota_exceeded"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewElevenLabsClient("k", srv.URL, "v", "m", VoiceSettings{})
	_, err := client.Synthesize(context.Background(), "hello")
	assert.ErrorContains(t, err, "quota_exceeded")
}

func TestElevenLabsEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewElevenLabsClient("k", srv.URL, "v", "m", VoiceSettings{})
	_, err := client.Synthesize(context.Background(), "hello")
	assert.Error(t, err)
}
