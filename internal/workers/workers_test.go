package workers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/activity"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/embedding"
	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/retrieval"
)

func seedStore() *catalog.FixtureStore {
	products := []catalog.Product{
		{ProductID: "p1", Name: "Aleutian Trail Runner", Brand: "Aleutian", Description: "lightweight running shoe",
			Category: catalog.CategoryRunningShoes, Price: catalog.NewMoneyFromFloat(129.99), Inventory: 10,
			AvailableSizes: []string{"9", "10"}, Embedding: []float32{1, 0, 0}},
		{ProductID: "p5", Name: "Compression Sleeve", Brand: "IronWorks", Description: "recovery accessory",
			Category: catalog.CategoryAccessories, Price: catalog.NewMoneyFromFloat(19.99), Inventory: 1, Embedding: []float32{0, 1, 0}},
	}
	return catalog.NewFixtureStore(products)
}

func TestSearchWorkerTextSearchRecordsActivityEvents(t *testing.T) {
	store := seedStore()
	r := retrieval.New(store, nil, retrieval.Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)
	oracle := embedding.NewFakeOracle(3)
	recorder := activity.New()

	w := NewSearchWorker(r, oracle, nil, recorder)
	result, err := w.TextSearch(context.Background(), "running shoe", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Message)

	events := recorder.Take()
	kinds := make([]activity.Kind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	assert.Contains(t, kinds, activity.KindEmbedding)
	assert.Contains(t, kinds, activity.KindSearch)
	assert.Contains(t, kinds, activity.KindResult)
}

type failingOracle struct{ dim int }

func (f *failingOracle) Dimension() int { return f.dim }
func (f *failingOracle) EmbedText(context.Context, string) ([]float32, error) {
	return nil, assertErr
}
func (f *failingOracle) EmbedImage(context.Context, []byte) ([]float32, error) {
	return nil, assertErr
}

var assertErr = apperr.EmbeddingFailure(nil)

func TestSearchWorkerFallsBackToLexicalOnEmbeddingFailure(t *testing.T) {
	store := seedStore()
	r := retrieval.New(store, nil, retrieval.Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)
	recorder := activity.New()

	w := NewSearchWorker(r, &failingOracle{dim: 3}, nil, recorder)
	result, err := w.TextSearch(context.Background(), "running shoe", 5)
	require.NoError(t, err, "embedding failure must not propagate as a turn failure")
	require.NotEmpty(t, result.Products)

	events := recorder.Take()
	var sawErrorEvent bool
	for _, e := range events {
		if e.Kind == activity.KindError && e.ErrorKind == "embedding" {
			sawErrorEvent = true
		}
	}
	assert.True(t, sawErrorEvent)
}

type fakeImageFetcher struct {
	bytes []byte
	err   error
}

func (f *fakeImageFetcher) Fetch(context.Context, string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bytes, nil
}

func TestSearchWorkerImageSearchResolvesImageURIThroughFetcher(t *testing.T) {
	store := seedStore()
	r := retrieval.New(store, nil, retrieval.Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)
	oracle := embedding.NewFakeOracle(3)
	recorder := activity.New()
	fetcher := &fakeImageFetcher{bytes: []byte("fake-image-bytes")}

	w := NewSearchWorker(r, oracle, fetcher, recorder)
	args, _ := json.Marshal(imageSearchArgs{ImageURI: "gs://bucket/object", Limit: 5})
	result, err := w.handleImageSearch(context.Background(), args)
	require.NoError(t, err)

	var sr SearchResult
	require.NoError(t, json.Unmarshal(result, &sr))
	assert.NotEmpty(t, sr.Message)
}

func TestSearchWorkerImageSearchRejectsImageURIWithoutFetcher(t *testing.T) {
	store := seedStore()
	r := retrieval.New(store, nil, retrieval.Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)
	oracle := embedding.NewFakeOracle(3)
	recorder := activity.New()

	w := NewSearchWorker(r, oracle, nil, recorder)
	args, _ := json.Marshal(imageSearchArgs{ImageURI: "gs://bucket/object", Limit: 5})
	_, err := w.handleImageSearch(context.Background(), args)
	assert.Equal(t, apperr.CodeBadImage, apperr.CodeOf(err))
}

func TestSearchWorkerImageSearchSurfacesFetcherFailure(t *testing.T) {
	store := seedStore()
	r := retrieval.New(store, nil, retrieval.Weights{Semantic: 0.7, Lexical: 0.3}, 4, 50)
	oracle := embedding.NewFakeOracle(3)
	recorder := activity.New()
	fetcher := &fakeImageFetcher{err: assertErr}

	w := NewSearchWorker(r, oracle, fetcher, recorder)
	args, _ := json.Marshal(imageSearchArgs{ImageURI: "gs://bucket/object", Limit: 5})
	_, err := w.handleImageSearch(context.Background(), args)
	assert.Equal(t, apperr.CodeBadImage, apperr.CodeOf(err))
}

func TestProductWorkerCheckInventoryRequiresRequestedSize(t *testing.T) {
	store := seedStore()
	w := NewProductWorker(store)

	status, err := w.CheckInventory(context.Background(), "p1", "11")
	require.NoError(t, err)
	assert.False(t, status.InStock, "size 11 is not in the product's available sizes")

	status, err = w.CheckInventory(context.Background(), "p1", "9")
	require.NoError(t, err)
	assert.True(t, status.InStock)
}

func TestProductWorkerGetDetailsNotFound(t *testing.T) {
	store := seedStore()
	w := NewProductWorker(store)

	_, err := w.GetDetails(context.Background(), "missing")
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestOrderWorkerPlaceAppliesPricingPolicy(t *testing.T) {
	store := seedStore()
	policy := catalog.PricingPolicy{TaxRate: 0.085, FreeShippingThreshold: catalog.NewMoneyFromFloat(75), FlatShipping: catalog.NewMoneyFromFloat(7.99)}
	w := NewOrderWorker(store, policy)

	order, err := w.Place(context.Background(), "cust-1", []catalog.OrderItemRequest{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, catalog.OrderConfirmed, order.Status)
	assert.NotEmpty(t, order.OrderID)
}

func TestOrderWorkerPlaceSurfacesInsufficientInventory(t *testing.T) {
	store := seedStore()
	w := NewOrderWorker(store, catalog.PricingPolicy{})

	_, err := w.Place(context.Background(), "cust-1", []catalog.OrderItemRequest{{ProductID: "p5", Quantity: 5}})
	assert.Equal(t, apperr.CodeInsufficientInventory, apperr.CodeOf(err))
}
