package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/clinvault/document-assistant/internal/infrastructure/resilience"
)

// Client talks to an OpenAI-compatible API for embeddings and chat
// completions. Both calls are network round trips and carry an explicit
// per-attempt timeout; retryable failures surface as domain.ErrTemporary.
type Client struct {
	baseURL        string
	apiKey         string
	embedModel     string
	chatModel      string
	requestTimeout time.Duration
	httpClient     *http.Client
	executor       *resilience.Executor
}

type Options struct {
	RequestTimeout     time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, apiKey, embedModel, chatModel string) *Client {
	return NewWithOptions(baseURL, apiKey, embedModel, chatModel, Options{})
}

func NewWithOptions(baseURL, apiKey, embedModel, chatModel string, options Options) *Client {
	requestTimeout := options.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		embedModel:     embedModel,
		chatModel:      chatModel,
		requestTimeout: requestTimeout,
		httpClient:     &http.Client{Timeout: 120 * time.Second},
		executor:       options.ResilienceExecutor,
	}
}

// Embedder converts text into the model's fixed-length vector.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	request := map[string]any{
		"model": e.client.embedModel,
		"input": text,
	}

	var response struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := e.client.call(ctx, "embeddings", "/v1/embeddings", request, &response); err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return response.Data[0].Embedding, nil
}

// Synthesizer produces the final user-facing answer from a system
// instruction plus prompt.
type Synthesizer struct {
	client *Client
}

func NewSynthesizer(client *Client) *Synthesizer {
	return &Synthesizer{client: client}
}

func (s *Synthesizer) Complete(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	request := map[string]any{
		"model": s.client.chatModel,
		"messages": []map[string]string{
			{"role": "system", "content": systemInstruction},
			{"role": "user", "content": userPrompt},
		},
		"max_tokens":  500,
		"temperature": 0.7,
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := s.client.call(ctx, "completion", "/v1/chat/completions", request, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty completion result")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func (c *Client) call(ctx context.Context, operation, path string, payload, out any) error {
	do := func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
		return c.postJSON(attemptCtx, path, payload, out, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "openai."+operation, do, classifyOpenAIError)
	} else {
		err = do(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}
