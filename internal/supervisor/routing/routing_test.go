package routing

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/workers"
)

func catalogTools() []workers.ToolSpec {
	noop := func(context.Context, json.RawMessage) (json.RawMessage, error) { return nil, nil }
	return []workers.ToolSpec{
		{Name: "text_search", BestFor: []string{"search", "find", "shoes", "products"}, UseWhen: "customer describes what they want", Handler: noop},
		{Name: "check_inventory", BestFor: []string{"stock", "available", "size"}, UseWhen: "customer asks if a size is in stock", Handler: noop},
		{Name: "place_order", BestFor: []string{"buy", "order", "checkout"}, UseWhen: "customer wants to purchase", Handler: noop},
	}
}

func TestBM25IndexScoresRelevantToolHighest(t *testing.T) {
	idx := BuildBM25Index(catalogTools())
	scores := idx.Score("is this shoe in stock in size 10")
	require.NotEmpty(t, scores)

	var best string
	var bestScore float64
	for name, s := range scores {
		if s > bestScore {
			best, bestScore = name, s
		}
	}
	assert.Equal(t, "check_inventory", best)
}

func TestBM25IndexEmptyQueryReturnsEmptyScores(t *testing.T) {
	idx := BuildBM25Index(catalogTools())
	assert.Empty(t, idx.Score(""))
}

func TestDeterministicRouterFixedTableBypassesScoring(t *testing.T) {
	r := DefaultTable()
	sel, err := r.SelectTool(context.Background(), "I want to buy this now", catalogTools())
	require.NoError(t, err)
	assert.Equal(t, "place_order", sel.Tool)
	assert.Equal(t, 1.0, sel.Confidence)
}

func TestDeterministicRouterFallsBackToTextSearch(t *testing.T) {
	r := DefaultTable()
	sel, err := r.SelectTool(context.Background(), "something with no keyword match", catalogTools())
	require.NoError(t, err)
	assert.Equal(t, "text_search", sel.Tool)
}

type scriptedRouter struct {
	sel Selection
	err error
}

func (s *scriptedRouter) SelectTool(context.Context, string, []workers.ToolSpec) (Selection, error) {
	return s.sel, s.err
}

func TestEscalatingRouterSkipsEscalationWhenConfident(t *testing.T) {
	primary := &scriptedRouter{sel: Selection{Tool: "text_search", Confidence: 0.9}}
	escalation := &scriptedRouter{sel: Selection{Tool: "place_order", Confidence: 1.0}}

	r := NewEscalatingRouter(primary, escalation, 0.7, nil, nil)
	sel, err := r.SelectTool(context.Background(), "find shoes", catalogTools())
	require.NoError(t, err)
	assert.Equal(t, "text_search", sel.Tool, "confident primary result should not be escalated")
}

func TestEscalatingRouterEscalatesOnLowConfidence(t *testing.T) {
	primary := &scriptedRouter{sel: Selection{Tool: "text_search", Confidence: 0.2}}
	escalation := &scriptedRouter{sel: Selection{Tool: "check_inventory", Confidence: 0.95}}

	r := NewEscalatingRouter(primary, escalation, 0.7, nil, nil)
	sel, err := r.SelectTool(context.Background(), "ambiguous query", catalogTools())
	require.NoError(t, err)
	assert.Equal(t, "check_inventory", sel.Tool)
}

func TestRouterCacheStoreRoundTrips(t *testing.T) {
	dir := t.TempDir()
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	defer func() { _ = os.RemoveAll(dir) }()

	cache := NewRouterCacheStore(db)
	sel := Selection{Tool: "text_search", Confidence: 0.88}
	require.NoError(t, cache.Save("find running shoes", sel))

	got, ok := cache.Lookup("find running shoes")
	require.True(t, ok)
	assert.Equal(t, sel, got)

	_, ok = cache.Lookup("never saved")
	assert.False(t, ok)
}
