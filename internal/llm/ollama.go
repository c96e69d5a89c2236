package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
)

// Ollama talks to a local Ollama server. Requests are serialized since a
// single local model instance handles one generation at a time.
type Ollama struct {
	client      *api.Client
	model       string
	temperature float32
	timeout     time.Duration
	mu          sync.Mutex
}

// NewOllama accepts either a bare host:port or a full http(s) URL.
func NewOllama(baseURL, model string, temperature float32, timeout time.Duration) (*Ollama, error) {
	base, err := ollamaURL(baseURL)
	if err != nil {
		return nil, err
	}

	return &Ollama{
		client:      api.NewClient(base, &http.Client{}),
		model:       model,
		temperature: temperature,
		timeout:     timeout,
	}, nil
}

func ollamaURL(baseURL string) (*url.URL, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ollama base url is empty")
	}
	if !strings.Contains(baseURL, "://") {
		return &url.URL{Scheme: "http", Host: baseURL, Path: "/"}, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama base url: %w", err)
	}
	return u, nil
}

func (o *Ollama) Complete(ctx context.Context, system, prompt string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	stream := false
	req := &api.GenerateRequest{
		Model:   o.model,
		System:  system,
		Prompt:  prompt,
		Stream:  &stream,
		Options: map[string]any{"temperature": o.temperature},
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	var responseFlow []string
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		responseFlow = append(responseFlow, resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return strings.Join(responseFlow, ""), nil
}
