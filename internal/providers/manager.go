package providers

import (
	"fmt"
	"strings"

	"revmatch/internal/config"
)

type NamedEmbedProvider struct {
	Ref      ProviderRef
	Provider EmbeddingProvider
}

// Manager holds the configured embedding providers as an explicit,
// long-lived shared resource: built once at process start, passed into
// whatever needs to embed, never reinitialized behind the caller's back.
type Manager struct {
	embedProviders []NamedEmbedProvider
}

func NewManager(cfg config.Config) (*Manager, error) {
	refs := ParseProviderList(cfg.EmbedProviders)

	m := &Manager{}
	for _, ref := range refs {
		p, err := buildProvider(ref, cfg.EmbedDim)
		if err != nil {
			return nil, err
		}
		m.embedProviders = append(m.embedProviders, NamedEmbedProvider{Ref: ref, Provider: p})
	}
	if len(m.embedProviders) == 0 {
		m.embedProviders = []NamedEmbedProvider{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider(cfg.EmbedDim)}}
	}
	return m, nil
}

func (m *Manager) FirstEmbedProvider() EmbeddingProvider {
	return m.embedProviders[0].Provider
}

func (m *Manager) EmbedProviderByIndex(i int) (EmbeddingProvider, ProviderRef) {
	if len(m.embedProviders) == 0 {
		p := NewMockProvider(384)
		return p, ProviderRef{Raw: "mock", Name: "mock"}
	}
	if i < 0 || i >= len(m.embedProviders) {
		i = 0
	}
	return m.embedProviders[i].Provider, m.embedProviders[i].Ref
}

func (m *Manager) EmbedCount() int {
	return len(m.embedProviders)
}

// PreferredEmbedOrder tries real providers before the mock fallback.
func (m *Manager) PreferredEmbedOrder() []int {
	n := len(m.embedProviders)
	if n <= 0 {
		return nil
	}
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if strings.ToLower(m.embedProviders[i].Ref.Name) != "mock" {
			out = append(out, i)
		}
	}
	for i := 0; i < n; i++ {
		if strings.ToLower(m.embedProviders[i].Ref.Name) == "mock" {
			out = append(out, i)
		}
	}
	return out
}

func (m *Manager) FindEmbedProviderIndex(raw string) int {
	target := strings.ToLower(strings.TrimSpace(raw))
	if target == "" {
		return -1
	}
	for i := range m.embedProviders {
		ref := m.embedProviders[i].Ref
		candidates := []string{
			strings.ToLower(strings.TrimSpace(ref.Raw)),
			strings.ToLower(strings.TrimSpace(ref.Name)),
		}
		if ref.KeyAlias != "" {
			candidates = append(candidates, strings.ToLower(strings.TrimSpace(ref.Name+":"+ref.KeyAlias)))
		}
		for _, c := range candidates {
			if c == target {
				return i
			}
		}
	}
	return -1
}

func buildProvider(ref ProviderRef, dim int) (EmbeddingProvider, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(dim), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	case "ollama":
		return NewOllamaEmbeddingProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", ref.Name)
	}
}
