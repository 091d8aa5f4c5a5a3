package rerank

import "context"

// Reranker scores (query, document) pairs with a cross-encoder model. It is
// more precise than raw vector distance at a higher per-pair cost, so the
// engine only runs it over a small over-fetched candidate pool.
type Reranker interface {
	// Rerank returns one relevance score per document, in input order.
	Rerank(ctx context.Context, query string, documents []string) ([]float64, error)

	// Probe verifies the backing model is usable. A probe failure at
	// bootstrap is fatal when reranking is enabled.
	Probe(ctx context.Context) error
}
