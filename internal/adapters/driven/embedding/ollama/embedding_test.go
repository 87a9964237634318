package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama returns an httptest server answering /api/embed with a
// deterministic per-text embedding, and records batch sizes.
func fakeOllama(t *testing.T, batchSizes *[]int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			w.WriteHeader(http.StatusOK)
		case "/api/embed":
			var req embedRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if batchSizes != nil {
				*batchSizes = append(*batchSizes, len(req.Input))
			}
			resp := embedResponse{Embeddings: make([][]float64, len(req.Input))}
			for i, text := range req.Input {
				// Pure function of the text, independent of batch position.
				resp.Embeddings[i] = []float64{float64(len(text)), 1}
			}
			require.NoError(t, json.NewEncoder(w).Encode(resp))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestEmbedBatch_PreservesOrderAndLength(t *testing.T) {
	srv := fakeOllama(t, nil)
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL, BatchSize: 2})
	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}

	embeddings, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, embeddings, len(texts))
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), embeddings[i][0])
	}
}

func TestEmbedBatch_RespectsBatchSize(t *testing.T) {
	var batchSizes []int
	srv := fakeOllama(t, &batchSizes)
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL, BatchSize: 2})
	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, batchSizes)
}

func TestEmbedBatch_BatchBoundariesDoNotAffectValues(t *testing.T) {
	srv := fakeOllama(t, nil)
	defer srv.Close()

	texts := []string{"alpha", "beta", "gamma", "delta"}

	small := NewEmbeddingService(Config{BaseURL: srv.URL, BatchSize: 1})
	large := NewEmbeddingService(Config{BaseURL: srv.URL, BatchSize: 32})

	a, err := small.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	b, err := large.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbed_SingleText(t *testing.T) {
	srv := fakeOllama(t, nil)
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL})
	vec, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 1}, vec)
}

func TestEmbed_ServerErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL})
	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestPing(t *testing.T) {
	srv := fakeOllama(t, nil)
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL})
	assert.NoError(t, svc.Ping(context.Background()))

	srv.Close()
	assert.Error(t, svc.Ping(context.Background()))
}
