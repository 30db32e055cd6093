package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	app_errors "moodchat/backend/internal/errors"
)

// LLMProvider defines the interface for interacting with a language model
// service. Generate blocks until the full response is available;
// GenerateStream delivers fragments on ch as they arrive and closes ch when
// the stream ends. A consumer that stops reading must cancel ctx so the
// underlying connection is released.
type LLMProvider interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
	GenerateStream(ctx context.Context, req *GenerateRequest, ch chan<- StreamResponse) error
}

// Message is a single chat-history entry sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options are the generation parameters forwarded to the model verbatim.
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	NumPredict  *int     `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// GenerateRequest targets /api/chat when Messages is set, /api/generate when
// only Prompt is set.
type GenerateRequest struct {
	Model    string    `json:"model"`
	Prompt   string    `json:"prompt,omitempty"`
	Messages []Message `json:"messages,omitempty"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
}

type GenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// StreamResponse is a single fragment of a streaming generation.
type StreamResponse struct {
	Content string
	Done    bool
	Error   string
}

type ollamaProvider struct {
	client *http.Client
	url    string
}

// NewOllamaProvider creates a provider talking to an Ollama-compatible HTTP
// API. Every call, streaming included, is bounded by timeout.
func NewOllamaProvider(url string, timeout time.Duration) LLMProvider {
	return &ollamaProvider{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}
}

func (p *ollamaProvider) endpoint(req *GenerateRequest) string {
	if len(req.Messages) > 0 {
		return p.url + "/api/chat"
	}
	return p.url + "/api/generate"
}

// classify translates transport-level failures into the application's error
// taxonomy so callers can distinguish "backend down" from "backend slow".
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", app_errors.ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", app_errors.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", app_errors.ErrServiceUnavailable, err)
}

func (p *ollamaProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	req.Stream = false
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(req), bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: api returned status %d: %s", app_errors.ErrServiceUnavailable, resp.StatusCode, string(bodyBytes))
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(err)
	}

	// /api/chat wraps the text in a message object, /api/generate returns it
	// flat. Try the chat shape first.
	type ollamaChatResponse struct {
		Model   string  `json:"model"`
		Message Message `json:"message"`
		Done    bool    `json:"done"`
	}
	var chatResp ollamaChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err == nil && chatResp.Message.Content != "" {
		return &GenerateResponse{
			Model:    chatResp.Model,
			Response: chatResp.Message.Content,
			Done:     chatResp.Done,
		}, nil
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return nil, fmt.Errorf("could not decode response: %s", string(bodyBytes))
	}
	return &genResp, nil
}

func (p *ollamaProvider) GenerateStream(ctx context.Context, req *GenerateRequest, ch chan<- StreamResponse) error {
	defer close(ch)

	req.Stream = true
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(req), bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		classified := classify(err)
		select {
		case ch <- StreamResponse{Error: classified.Error()}:
		case <-ctx.Done():
		}
		return classified
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("%w: api returned status %d: %s", app_errors.ErrServiceUnavailable, resp.StatusCode, string(bodyBytes))
		select {
		case ch <- StreamResponse{Error: err.Error()}:
		case <-ctx.Done():
		}
		return err
	}

	// Ollama streams newline-delimited JSON. Each line is either a chat
	// chunk ({"message":{"content":...}}) or a generate chunk
	// ({"response":...}); support both so one provider serves both paths.
	type ollamaStreamChunk struct {
		Message  Message `json:"message"`
		Response string  `json:"response"`
		Done     bool    `json:"done"`
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var chunk ollamaStreamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			select {
			case ch <- StreamResponse{Error: "failed to decode stream chunk"}:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		content := chunk.Message.Content
		if content == "" {
			content = chunk.Response
		}

		select {
		case ch <- StreamResponse{Content: content, Done: chunk.Done}:
		case <-ctx.Done():
			return ctx.Err()
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		// An abandoned stream cancels its context; that is a normal exit,
		// not a transport failure to report.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classify(err)
	}
	return nil
}
