package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/config"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/query"
)

func fixtureWithEmbeddings() *catalog.FixtureStore {
	products := []catalog.Product{
		{ProductID: "p1", Name: "Aleutian Trail Runner", Brand: "Aleutian", Description: "lightweight running shoe",
			Category: catalog.CategoryRunningShoes, Price: catalog.NewMoneyFromFloat(129.99), Inventory: 10, Embedding: []float32{1, 0, 0}},
		{ProductID: "p2", Name: "Summit Trainer", Brand: "Aleutian", Description: "cross trainer for the gym",
			Category: catalog.CategoryTrainingShoes, Price: catalog.NewMoneyFromFloat(99.00), Inventory: 5, Embedding: []float32{0.9, 0.1, 0}},
		{ProductID: "p3", Name: "Power Rack", Brand: "IronWorks", Description: "adjustable power rack",
			Category: catalog.CategoryFitnessEquipment, Price: catalog.NewMoneyFromFloat(450.00), Inventory: 2, Embedding: []float32{0, 1, 0}},
	}
	return catalog.NewFixtureStore(products)
}

func TestRetrieveLexicalOnlyPathWhenNoVector(t *testing.T) {
	store := fixtureWithEmbeddings()
	r := New(store, nil, Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)

	results, err := r.Retrieve(context.Background(), query.ParsedQuery{CleanedText: "running"}, nil, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, res := range results {
		assert.Equal(t, 0.0, res.SemanticScore, "lexical-only path never sets a semantic score")
	}
}

func TestRetrieveHybridScoresAreFiniteAndInRange(t *testing.T) {
	store := fixtureWithEmbeddings()
	r := New(store, nil, Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)

	results, err := r.Retrieve(context.Background(), query.ParsedQuery{CleanedText: "running"}, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, res := range results {
		assert.GreaterOrEqual(t, res.Score, -0.001)
		assert.LessOrEqual(t, res.Score, 1.001)
		assert.False(t, isNaN(res.Score))
	}
	assert.Equal(t, "p1", results[0].ProductID)
}

func TestRetrieveHybridAppliesHardFilterAfterScoring(t *testing.T) {
	store := fixtureWithEmbeddings()
	r := New(store, nil, Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)

	cat := catalog.CategoryFitnessEquipment
	results, err := r.Retrieve(context.Background(), query.ParsedQuery{Category: &cat}, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	for _, res := range results {
		assert.Equal(t, catalog.CategoryFitnessEquipment, res.Category)
	}
}

func TestRetrieveEmptyCandidateSetReturnsEmptyNotError(t *testing.T) {
	store := catalog.NewFixtureStore(nil)
	r := New(store, nil, Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)

	results, err := r.Retrieve(context.Background(), query.ParsedQuery{}, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveLexicalScoreZeroWhenCleanedTextEmpty(t *testing.T) {
	store := fixtureWithEmbeddings()
	r := New(store, nil, Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)

	results, err := r.Retrieve(context.Background(), query.ParsedQuery{}, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, res := range results {
		assert.Equal(t, 0.0, res.LexicalScore)
	}
	// semantic-only ordering: p1 (exact match) before p2 before p3
	assert.Equal(t, "p1", results[0].ProductID)
}

func isNaN(f float64) bool { return f != f }

func TestNewANNIndexDefaultsToStoreForPGVector(t *testing.T) {
	store := fixtureWithEmbeddings()
	cfg := config.Default()
	cfg.ANNBackend = config.ANNBackendPGVector

	ann, err := NewANNIndex(cfg, store)
	require.NoError(t, err)
	assert.Same(t, catalog.ANNIndex(store), ann)
}

func TestNewANNIndexSelectsWeaviateBackend(t *testing.T) {
	store := fixtureWithEmbeddings()
	cfg := config.Default()
	cfg.ANNBackend = config.ANNBackendWeaviate
	cfg.WeaviateScheme = "http"
	cfg.WeaviateHost = "weaviate.internal:8080"
	cfg.WeaviateClassName = "Product"

	ann, err := NewANNIndex(cfg, store)
	require.NoError(t, err)
	_, ok := ann.(*catalog.WeaviateANNIndex)
	assert.True(t, ok, "expected a *catalog.WeaviateANNIndex, got %T", ann)
}

func TestNewANNIndexRejectsUnknownBackend(t *testing.T) {
	store := fixtureWithEmbeddings()
	cfg := config.Default()
	cfg.ANNBackend = config.ANNBackend("made-up")

	_, err := NewANNIndex(cfg, store)
	assert.Error(t, err)
}
