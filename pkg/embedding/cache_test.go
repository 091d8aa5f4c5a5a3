package embedding

import (
	"context"
	"fmt"
	"testing"
)

// countingProvider returns a distinct vector per text and counts calls.
type countingProvider struct {
	calls map[string]int
	seq   float32
}

func newCountingProvider() *countingProvider {
	return &countingProvider{calls: map[string]int{}}
}

func (p *countingProvider) Generate(ctx context.Context, text string) ([]float32, error) {
	p.calls[text]++
	p.seq++
	return []float32{p.seq, float32(len(text))}, nil
}

func (p *countingProvider) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, _ := p.Generate(ctx, t)
		out[i] = vec
	}
	return out, nil
}

func (p *countingProvider) Probe(ctx context.Context) error { return nil }

func TestCacheHitSkipsProvider(t *testing.T) {
	provider := newCountingProvider()
	cache := NewCache(provider, 10)
	ctx := context.Background()

	first, err := cache.GetOrCompute(ctx, "", "library hours")
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}
	second, err := cache.GetOrCompute(ctx, "", "library hours")
	if err != nil {
		t.Fatalf("GetOrCompute: %v", err)
	}

	if provider.calls["library hours"] != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls["library hours"])
	}
	if first[0] != second[0] {
		t.Errorf("cached vector differs: %v vs %v", first, second)
	}
}

func TestCacheScopeSeparatesEntries(t *testing.T) {
	provider := newCountingProvider()
	cache := NewCache(provider, 10)
	ctx := context.Background()

	if _, err := cache.GetOrCompute(ctx, "session-a", "opening times"); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.GetOrCompute(ctx, "session-b", "opening times"); err != nil {
		t.Fatal(err)
	}

	if provider.calls["opening times"] != 2 {
		t.Errorf("provider calls = %d, want 2 (one per scope)", provider.calls["opening times"])
	}
	if cache.Len() != 2 {
		t.Errorf("cache size = %d, want 2", cache.Len())
	}
}

func TestCacheEvictsOldestInserted(t *testing.T) {
	provider := newCountingProvider()
	cache := NewCache(provider, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.GetOrCompute(ctx, "", fmt.Sprintf("q%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	// Touch q0 again: FIFO ignores recency, q0 must still be the eviction
	// victim when q3 arrives.
	if _, err := cache.GetOrCompute(ctx, "", "q0"); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.GetOrCompute(ctx, "", "q3"); err != nil {
		t.Fatal(err)
	}

	// q1 and q2 survived the eviction.
	if _, err := cache.GetOrCompute(ctx, "", "q1"); err != nil {
		t.Fatal(err)
	}
	if _, err := cache.GetOrCompute(ctx, "", "q2"); err != nil {
		t.Fatal(err)
	}
	if provider.calls["q1"] != 1 || provider.calls["q2"] != 1 {
		t.Errorf("calls q1=%d q2=%d, want 1 each", provider.calls["q1"], provider.calls["q2"])
	}

	if _, err := cache.GetOrCompute(ctx, "", "q0"); err != nil {
		t.Fatal(err)
	}
	if provider.calls["q0"] != 2 {
		t.Errorf("q0 provider calls = %d, want 2 (evicted despite recent hit)", provider.calls["q0"])
	}
}

func TestCacheClear(t *testing.T) {
	provider := newCountingProvider()
	cache := NewCache(provider, 5)
	ctx := context.Background()

	if _, err := cache.GetOrCompute(ctx, "", "hello"); err != nil {
		t.Fatal(err)
	}
	cache.Clear()

	if cache.Len() != 0 {
		t.Errorf("size after clear = %d, want 0", cache.Len())
	}
	if _, err := cache.GetOrCompute(ctx, "", "hello"); err != nil {
		t.Fatal(err)
	}
	if provider.calls["hello"] != 2 {
		t.Errorf("provider calls = %d, want 2 after clear", provider.calls["hello"])
	}
}
