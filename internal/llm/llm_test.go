package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/newsfeed/internal/llm"
)

func TestOpenAI_Complete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	client := llm.NewOpenAI(srv.URL, "key", "gpt-test", 0.8, 5*time.Second)
	out, err := client.Complete(context.Background(), "be brief", "say hello")
	require.NoError(t, err)

	assert.Equal(t, "hello", out)
	assert.Equal(t, "gpt-test", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "say hello", got.Messages[1].Content)
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	client := llm.NewOpenAI(srv.URL, "key", "gpt-test", 0.8, 5*time.Second)
	_, err := client.Complete(context.Background(), "", "prompt")
	assert.ErrorContains(t, err, "empty response")
}

func TestOpenAI_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := llm.NewOpenAI(srv.URL, "key", "gpt-test", 0.8, 5*time.Second)
	_, err := client.Complete(context.Background(), "", "prompt")
	assert.ErrorContains(t, err, "chat completion")
}

func TestOllama_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","response":"[]","done":true}` + "\n"))
	}))
	defer srv.Close()

	client, err := llm.NewOllama(srv.URL, "llama3", 0.8, 5*time.Second)
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestNewOllama_EmptyURL(t *testing.T) {
	_, err := llm.NewOllama("", "llama3", 0.8, time.Second)
	assert.Error(t, err)
}
