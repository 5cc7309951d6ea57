package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerateParsesChatReply(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaChatMessage{Role: "assistant", Content: "  aye, captain  "},
		})
	}))
	defer srv.Close()

	c := newOllamaClient(srv.URL, "llama3.2", 0.7, 256, time.Second)
	text, err := c.Generate(context.Background(), Prompt{System: "be brief", User: "report"})
	require.NoError(t, err)
	assert.Equal(t, "aye, captain", text)

	assert.Equal(t, "llama3.2", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.InDelta(t, 0.7, got.Options["temperature"], 1e-9)
	assert.EqualValues(t, 256, got.Options["num_predict"])
}

func TestOllamaGenerateSurfacesBodyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaChatResponse{Error: "model not found"})
	}))
	defer srv.Close()

	c := newOllamaClient(srv.URL, "llama3.2", 0, 0, time.Second)
	_, err := c.Generate(context.Background(), Prompt{User: "report"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaGenerateRejectsEmptyPrompt(t *testing.T) {
	c := newOllamaClient("http://localhost:11434", "llama3.2", 0, 0, time.Second)
	_, err := c.Generate(context.Background(), Prompt{})
	assert.Error(t, err)
}

func TestNewDefaultsOllamaEndpointAndModel(t *testing.T) {
	client, err := New(Config{Provider: "ollama"})
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "ollama", client.Provider())
	assert.Equal(t, "llama3.2", client.Model())
}
