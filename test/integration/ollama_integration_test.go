package integration

import (
	"context"
	"log"
	"math"
	"os"
	"testing"

	"agent-chatbot-be/pkg/embedding"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Exercises the live Ollama embedding endpoint. Gated on OLLAMA_BASE_URL so
// CI without a local model server skips it.
func TestOllamaEmbeddingProvider(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		t.Skip("Skipping integration test: OLLAMA_BASE_URL not set")
	}
	modelName := os.Getenv("OLLAMA_EMBEDDING_MODEL")
	if modelName == "" {
		modelName = "nomic-embed-text"
	}

	provider := embedding.NewOllamaProvider(baseURL, modelName)
	ctx := context.Background()

	require.NoError(t, provider.Probe(ctx))

	vector, err := provider.Generate(ctx, "What are the library opening hours?")
	require.NoError(t, err)
	require.NotEmpty(t, vector)

	// Vectors are normalized to unit length for cosine distance.
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-3)

	batch, err := provider.GenerateBatch(ctx, []string{"opening hours", "refund policy"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, len(batch[0]), len(batch[1]))
}
