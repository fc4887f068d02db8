package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/activity"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/embedding"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/retrieval"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/supervisor"
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

func buildOrchestrator(store *catalog.FixtureStore) *Orchestrator {
	recorder := activity.New()
	r := retrieval.New(store, nil, retrieval.Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)
	oracle := embedding.NewFakeOracle(3)

	search := workers.NewSearchWorker(r, oracle, nil, recorder)
	product := workers.NewProductWorker(store)
	policy := catalog.PricingPolicy{TaxRate: 0.085, FreeShippingThreshold: catalog.NewMoneyFromFloat(75), FlatShipping: catalog.NewMoneyFromFloat(7.99)}
	order := workers.NewOrderWorker(store, policy)

	sup := supervisor.New([][]workers.ToolSpec{search.Tools(), product.Tools(), order.Tools()}, nil, routing.DefaultTable(), 5, recorder, nil)

	return New(store, nil, r, sup, order, recorder, 30*time.Second)
}

func TestHandleTurnPhase1LexicalOnly(t *testing.T) {
	o := buildOrchestrator(seedStore())
	result, err := o.HandleTurn(context.Background(), TurnRequest{Phase: PhaseDirect, Message: "running shoe"})
	require.NoError(t, err)
	assert.Empty(t, result.BusinessErrorCode)
	assert.NotEmpty(t, result.Products)
}

func TestHandleTurnPhase3AgenticDispatchesToSearchWorker(t *testing.T) {
	o := buildOrchestrator(seedStore())
	result, err := o.HandleTurn(context.Background(), TurnRequest{Phase: PhaseAgentic, Message: "running shoe"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Products)
	assert.NotEmpty(t, result.FollowUpSuggestions)
}

func TestHandleTurnRejectsInvalidPhase(t *testing.T) {
	o := buildOrchestrator(seedStore())
	_, err := o.HandleTurn(context.Background(), TurnRequest{Phase: 9, Message: "hi"})
	assert.Error(t, err)
}

func TestHandleTurnRejectsEmptyMessageAndImage(t *testing.T) {
	o := buildOrchestrator(seedStore())
	_, err := o.HandleTurn(context.Background(), TurnRequest{Phase: PhaseDirect})
	assert.Error(t, err)
}

func TestPlaceOrderConfirmsAndSuppressesFollowUps(t *testing.T) {
	o := buildOrchestrator(seedStore())
	result, err := o.PlaceOrder(context.Background(), OrderRequest{Phase: PhaseAgentic, CustomerID: "cust-1", ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	require.NotNil(t, result.Order)
	assert.Equal(t, catalog.OrderConfirmed, result.Order.Status)
	assert.Empty(t, result.BusinessErrorCode)
	assert.Empty(t, result.FollowUpSuggestions)
}

func TestPlaceOrderSurfacesInsufficientInventoryAsBusinessError(t *testing.T) {
	o := buildOrchestrator(seedStore())
	result, err := o.PlaceOrder(context.Background(), OrderRequest{Phase: PhaseAgentic, CustomerID: "cust-1", ProductID: "p1", Quantity: 999})
	require.NoError(t, err, "business errors surface inside a successful TurnResult, not as a Go error")
	assert.Equal(t, "insufficient_inventory", result.BusinessErrorCode)
}
