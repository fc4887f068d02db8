package supervisor

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/activity"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	fakeembed "github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/embedding"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/llmoracle"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/retrieval"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/supervisor/routing"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/workers"
)

func seedStore() *catalog.FixtureStore {
	products := []catalog.Product{
		{ProductID: "p1", Name: "Aleutian Trail Runner", Brand: "Aleutian", Description: "lightweight running shoe",
			Category: catalog.CategoryRunningShoes, Price: catalog.NewMoneyFromFloat(129.99), Inventory: 10,
			AvailableSizes: []string{"9", "10"}, Embedding: []float32{1, 0, 0}},
	}
	return catalog.NewFixtureStore(products)
}

func buildWorkerSets(store *catalog.FixtureStore, recorder *activity.Recorder) [][]workers.ToolSpec {
	r := retrieval.New(store, nil, retrieval.Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)
	oracle := fakeembed.NewFakeOracle(3)
	search := workers.NewSearchWorker(r, oracle, nil, recorder)
	product := workers.NewProductWorker(store)
	order := workers.NewOrderWorker(store, catalog.PricingPolicy{TaxRate: 0.085, FreeShippingThreshold: catalog.NewMoneyFromFloat(75), FlatShipping: catalog.NewMoneyFromFloat(7.99)})
	return [][]workers.ToolSpec{search.Tools(), product.Tools(), order.Tools()}
}

func TestSupervisorDeterministicModeDispatchesBySingleKeywordMatch(t *testing.T) {
	store := seedStore()
	recorder := activity.New()
	s := New(buildWorkerSets(store, recorder), nil, routing.DefaultTable(), 5, recorder, nil)

	reply, err := s.Handle(context.Background(), Request{Message: "find me a running shoe"})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Products)
}

func TestSupervisorDeterministicModeRoutesOrderKeyword(t *testing.T) {
	store := seedStore()
	recorder := activity.New()
	s := New(buildWorkerSets(store, recorder), nil, routing.DefaultTable(), 5, recorder, nil)

	reply, err := s.Handle(context.Background(), Request{
		Message:    "I want to buy this",
		CustomerID: "cust-1",
		Items:      []catalog.OrderItemRequest{{ProductID: "p1", Quantity: 1}},
	})
	require.NoError(t, err)
	require.NotNil(t, reply.Order)
	assert.Equal(t, catalog.OrderConfirmed, reply.Order.Status)
}

func TestSupervisorAgenticModeStopsAtFinalAnswer(t *testing.T) {
	store := seedStore()
	recorder := activity.New()
	oracle := llmoracle.NewFakeOracle(llmoracle.FinalAnswer{Text: "Sure, how can I help?"})
	s := New(buildWorkerSets(store, recorder), oracle, nil, 5, recorder, nil)

	reply, err := s.Handle(context.Background(), Request{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Sure, how can I help?", reply.Text)
}

func TestSupervisorAgenticModeDispatchesToolThenAnswers(t *testing.T) {
	store := seedStore()
	recorder := activity.New()
	oracle := llmoracle.NewFakeOracle(
		llmoracle.ToolCall{Name: "text_search", Arguments: json.RawMessage(`{"query":"running shoe","limit":5}`)},
	)
	s := New(buildWorkerSets(store, recorder), oracle, nil, 5, recorder, nil)

	reply, err := s.Handle(context.Background(), Request{Message: "find me a running shoe"})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Products)

	events := recorder.Take()
	var sawDelegation, sawResult bool
	for _, e := range events {
		if e.Kind == activity.KindDelegation {
			sawDelegation = true
		}
		if e.Kind == activity.KindResult {
			sawResult = true
		}
	}
	assert.True(t, sawDelegation)
	assert.True(t, sawResult)
}

func TestSupervisorAgenticModeBoundsToolCalls(t *testing.T) {
	store := seedStore()
	recorder := activity.New()
	call := llmoracle.ToolCall{Name: "get_details", Arguments: json.RawMessage(`{"product_id":"p1"}`)}
	oracle := llmoracle.NewFakeOracle(call, call, call, call, call, call)
	s := New(buildWorkerSets(store, recorder), oracle, nil, 5, recorder, nil)

	_, err := s.Handle(context.Background(), Request{Message: "tell me about p1"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeLoopExhausted, apperr.CodeOf(err))
}

func TestSupervisorAgenticModeRejectsUnknownTool(t *testing.T) {
	store := seedStore()
	recorder := activity.New()
	oracle := llmoracle.NewFakeOracle(llmoracle.ToolCall{Name: "delete_catalog", Arguments: json.RawMessage(`{}`)})
	s := New(buildWorkerSets(store, recorder), oracle, nil, 5, recorder, nil)

	_, err := s.Handle(context.Background(), Request{Message: "do something bad"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeLLMFailure, apperr.CodeOf(err))
}
