package domain

// DemoModelName is reported in place of a model name for providers running in demo mode.
const DemoModelName = "demo"

// ProviderStatus says why a provider is or is not live.
type ProviderStatus string

const (
	// ProviderReady means the provider answered its connectivity check.
	ProviderReady ProviderStatus = "ready"

	// ProviderUnconfigured means no provider, no credentials or an
	// unsupported provider was selected.
	ProviderUnconfigured ProviderStatus = "unconfigured"

	// ProviderUnreachable means the provider is configured but failed its
	// connectivity check at startup.
	ProviderUnreachable ProviderStatus = "unreachable"
)

// ProviderAvailability records which external providers are live.
// It is built once at startup and passed to every pipeline stage, so
// demo-mode decisions are made from this value alone.
type ProviderAvailability struct {
	// Embedding is true when an embedding provider is configured and reachable.
	Embedding bool `json:"embedding"`

	// Generation is true when a generation provider is configured and reachable.
	Generation bool `json:"generation"`

	// Cache is true when a query cache backend is active.
	Cache bool `json:"cache"`

	// EmbeddingModel is the display name of the embedding model.
	EmbeddingModel string `json:"embedding_model"`

	// GenerationModel is the display name of the generation model.
	GenerationModel string `json:"generation_model"`

	// EmbeddingStatus and GenerationStatus explain the two flags above.
	// Empty values are read through EmbeddingState and GenerationState.
	EmbeddingStatus  ProviderStatus `json:"embedding_status,omitempty"`
	GenerationStatus ProviderStatus `json:"generation_status,omitempty"`

	// Warnings lists the configuration problems that caused fallbacks.
	Warnings []string `json:"warnings,omitempty"`
}

// DemoMode reports whether any provider is running on placeholder data.
func (a ProviderAvailability) DemoMode() bool {
	return !a.Embedding || !a.Generation
}

// EmbeddingDemo reports whether embeddings and retrieval use placeholder data.
func (a ProviderAvailability) EmbeddingDemo() bool {
	return !a.Embedding
}

// GenerationDemo reports whether answers are templated placeholders.
func (a ProviderAvailability) GenerationDemo() bool {
	return !a.Generation
}

// EmbeddingModelName returns the model name to report, or DemoModelName.
func (a ProviderAvailability) EmbeddingModelName() string {
	if !a.Embedding || a.EmbeddingModel == "" {
		return DemoModelName
	}
	return a.EmbeddingModel
}

// GenerationModelName returns the model name to report, or DemoModelName.
func (a ProviderAvailability) GenerationModelName() string {
	if !a.Generation || a.GenerationModel == "" {
		return DemoModelName
	}
	return a.GenerationModel
}

// EmbeddingState returns the embedding provider status.
func (a ProviderAvailability) EmbeddingState() ProviderStatus {
	return providerState(a.Embedding, a.EmbeddingStatus)
}

// GenerationState returns the generation provider status.
func (a ProviderAvailability) GenerationState() ProviderStatus {
	return providerState(a.Generation, a.GenerationStatus)
}

// WithStates returns a copy with both status fields filled in.
func (a ProviderAvailability) WithStates() ProviderAvailability {
	a.EmbeddingStatus = a.EmbeddingState()
	a.GenerationStatus = a.GenerationState()
	return a
}

func providerState(live bool, status ProviderStatus) ProviderStatus {
	if live {
		return ProviderReady
	}
	if status == "" || status == ProviderReady {
		return ProviderUnconfigured
	}
	return status
}
