// Package llmgateway implements the LLM Gateway (C3): a provider-neutral
// structured-output call with retries and per-agent model override, built on
// the two eino-ext model packages the teacher already wires (deepseek,
// openai).
package llmgateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// ProgressReporter is the subset of internal/progress.Bus the gateway needs
// to report retry attempts.
type ProgressReporter interface {
	UpdateStatus(agentKey string, ticker string, status, analysis string)
}

// Gateway resolves models through a Registry and emits retry progress
// through an optional ProgressReporter (nil is fine — tests and one-shot
// CLI runs don't need it).
type Gateway struct {
	registry *Registry
	progress ProgressReporter
}

func New(registry *Registry, progress ProgressReporter) *Gateway {
	return &Gateway{registry: registry, progress: progress}
}

// CallRequest is one structured-output call.
type CallRequest struct {
	Messages      []*schema.Message
	AgentKey      string
	ModelName     string
	ModelProvider string
	MaxRetries    int
}

// Call resolves a model, asks it to respond with a fenced JSON block
// decodable into T, and unmarshals the result. On any failure — model
// resolution, the network call, or a malformed response — it emits an
// "Error - retry i/max_retries" progress event and retries; after
// MaxRetries failures it returns defaultFactory() and a nil error. Per
// spec §4.3 the gateway never surfaces an error to the caller; a bad model
// response degrades to a neutral default, it does not fail the run.
func Call[T any](ctx context.Context, gw *Gateway, req CallRequest, defaultFactory func() T) (T, error) {
	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		var out T
		if err := gw.attempt(ctx, req, &out); err == nil {
			return out, nil
		}
		if gw.progress != nil {
			gw.progress.UpdateStatus(req.AgentKey, "", fmt.Sprintf("Error - retry %d/%d", attempt+1, maxRetries), "")
		}
	}
	return defaultFactory(), nil
}

func (gw *Gateway) attempt(ctx context.Context, req CallRequest, out any) error {
	raw, err := gw.rawResponse(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("model response is not valid json: %w", err)
	}
	return nil
}

// rawResponse resolves the model, invokes it, and returns the extracted
// JSON payload as raw bytes regardless of the caller's target type.
func (gw *Gateway) rawResponse(ctx context.Context, req CallRequest) ([]byte, error) {
	chatModel, err := gw.registry.Resolve(ctx, req.ModelProvider, req.ModelName)
	if err != nil {
		return nil, err
	}

	reply, err := chatModel.Generate(ctx, req.Messages)
	if err != nil {
		return nil, fmt.Errorf("model generate: %w", err)
	}

	text, ok := extractJSON(reply.Content)
	if !ok {
		text = reply.Content
	}

	var probe json.RawMessage
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, fmt.Errorf("model response is not valid json: %w", err)
	}
	return probe, nil
}

// CallJSON satisfies internal/registry.LLMCaller: a caller-agnostic variant
// of Call that returns the raw JSON bytes instead of a decoded value, for
// callers (the analyst registry) that don't want a generic type parameter
// threaded through their own interface.
func (gw *Gateway) CallJSON(ctx context.Context, prompt, agentKey, modelName, modelProvider string, maxRetries int, defaultJSON []byte) ([]byte, error) {
	req := CallRequest{
		Messages:      []*schema.Message{schema.UserMessage(prompt)},
		AgentKey:      agentKey,
		ModelName:     modelName,
		ModelProvider: modelProvider,
		MaxRetries:    maxRetries,
	}
	out, err := Call[json.RawMessage](ctx, gw, req, func() json.RawMessage { return json.RawMessage(defaultJSON) })
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
