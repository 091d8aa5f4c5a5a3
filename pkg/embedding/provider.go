package embedding

import "context"

// Provider defines the interface for generating text embeddings. Inference is
// a pure function of the model weights and the input, so one provider is
// shared read-only across all requests.
type Provider interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	GenerateBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Probe verifies the backing model is loadable. Bootstrap treats a probe
	// failure as fatal: the engine must refuse to start without embeddings.
	Probe(ctx context.Context) error
}
