package llmgateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	deepseekModel "github.com/cloudwego/eino-ext/components/model/deepseek"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
)

// ModelFactory builds a model.ChatModel for a given model name, grounded on
// the teacher's deepseek.NewChatModel/openai.NewChatModel call sites
// (internal/agents/analysts/market_analyst.go, pkg/eino/infrastructure.go).
type ModelFactory func(ctx context.Context, modelName string) (model.ChatModel, error)

// Registry resolves a model.ChatModel by (provider, modelName), lazily
// constructing and caching one instance per pair — unlike the teacher's
// package-level `var ChatModel model.Model` (internal/agents/infrastructure.go),
// this is an owned value so multiple runs with different provider/model
// combinations don't clobber each other.
type Registry struct {
	mu        sync.Mutex
	factories map[string]ModelFactory
	cache     map[string]model.ChatModel
}

// NewRegistry wires the two eino-ext model packages the teacher already
// imports. Either key may be empty; resolving a provider with no configured
// key fails at first use rather than at construction.
func NewRegistry(deepseekAPIKey, openaiAPIKey, openaiBaseURL string) *Registry {
	r := &Registry{
		factories: make(map[string]ModelFactory),
		cache:     make(map[string]model.ChatModel),
	}
	r.factories["deepseek"] = func(ctx context.Context, modelName string) (model.ChatModel, error) {
		if deepseekAPIKey == "" {
			return nil, fmt.Errorf("deepseek api key not configured")
		}
		return deepseekModel.NewChatModel(ctx, &deepseekModel.ChatModelConfig{
			APIKey:    deepseekAPIKey,
			Model:     modelName,
			MaxTokens: 4000,
		})
	}
	r.factories["openai"] = func(ctx context.Context, modelName string) (model.ChatModel, error) {
		if openaiAPIKey == "" {
			return nil, fmt.Errorf("openai api key not configured")
		}
		cfg := &openaiModel.ChatModelConfig{
			APIKey: openaiAPIKey,
			Model:  modelName,
		}
		if openaiBaseURL != "" {
			cfg.BaseURL = openaiBaseURL
		}
		return openaiModel.NewChatModel(ctx, cfg)
	}
	return r
}

// Resolve returns the cached ChatModel for (provider, modelName), building
// it on first use.
func (r *Registry) Resolve(ctx context.Context, provider, modelName string) (model.ChatModel, error) {
	key := provider + ":" + modelName

	r.mu.Lock()
	if cm, ok := r.cache[key]; ok {
		r.mu.Unlock()
		return cm, nil
	}
	factory, ok := r.factories[provider]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown model provider %q", provider)
	}

	cm, err := factory(ctx, modelName)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[key] = cm
	r.mu.Unlock()
	return cm, nil
}
