package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	assert.InDelta(t, 0.0, CosineDistance(v, v), 1e-9)
}

func TestCosineSimilarityOrthogonalVectors(t *testing.T) {
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosineSimilarityZeroVectorIsZeroNotNaN(t *testing.T) {
	sim := CosineSimilarity([]float32{0, 0}, []float32{1, 1})
	assert.Equal(t, 0.0, sim)
}

func TestFakeOracleIsDeterministic(t *testing.T) {
	oracle := NewFakeOracle(16)
	a, err := oracle.EmbedText(context.Background(), "trail running shoes")
	require.NoError(t, err)
	b, err := oracle.EmbedText(context.Background(), "trail running shoes")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestFakeOracleDifferentInputsDiffer(t *testing.T) {
	oracle := NewFakeOracle(16)
	a, err := oracle.EmbedText(context.Background(), "trail running shoes")
	require.NoError(t, err)
	b, err := oracle.EmbedText(context.Background(), "power rack")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFakeOracleVectorsAreUnitNormalized(t *testing.T) {
	oracle := NewFakeOracle(32)
	v, err := oracle.EmbedText(context.Background(), "anything")
	require.NoError(t, err)

	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sumSq, 1e-3)
}

func TestHTTPOracleEmbedTextParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings":[[0.6,0.8]]}`))
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, "test-model", 2, 100)
	vec, err := oracle.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestHTTPOracleRejectsWrongDimension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, "test-model", 2, 100)
	_, err := oracle.EmbedText(context.Background(), "hello")
	assert.Error(t, err)
}

func TestHTTPOracleSurfacesHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, "test-model", 2, 100)
	_, err := oracle.EmbedText(context.Background(), "hello")
	assert.Error(t, err)
}

func TestHTTPOracleEmbedImageBase64Encodes(t *testing.T) {
	var capturedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		capturedBody = string(buf)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings":[[1,0]]}`))
	}))
	defer server.Close()

	oracle := NewHTTPOracle(server.URL, "test-model", 2, 100)
	_, err := oracle.EmbedImage(context.Background(), []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	assert.Contains(t, capturedBody, "\"input\":\"")
}
