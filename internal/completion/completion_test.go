package completion_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/mama-respira/internal/completion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WithoutKeyIsDisabled(t *testing.T) {
	c := completion.New(completion.Config{APIKey: "  "})
	_, err := c.Complete(context.Background(), "sys", "prompt", 100)
	assert.ErrorIs(t, err, completion.ErrDisabled)
}

func TestClient_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":" Buen patrón "},{"type":"text","text":"de siestas."}]}`))
	}))
	defer srv.Close()

	c := completion.New(completion.Config{APIKey: "secret", Model: "test-model", BaseURL: srv.URL + "/", Timeout: time.Second})
	text, err := c.Complete(context.Background(), "Eres coach", "Siestas: 2", 300)
	require.NoError(t, err)
	assert.Equal(t, "Buen patrón de siestas.", text)

	assert.Equal(t, "test-model", got["model"])
	assert.Equal(t, "Eres coach", got["system"])
	assert.EqualValues(t, 300, got["max_tokens"])
}

func TestClient_CompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"api error", http.StatusTooManyRequests, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`, "slow down"},
		{"plain error", http.StatusBadGateway, `upstream down`, "upstream down"},
		{"no text", http.StatusOK, `{"content":[]}`, "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := completion.New(completion.Config{APIKey: "k", BaseURL: srv.URL})
			_, err := c.Complete(context.Background(), "", "p", 10)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
