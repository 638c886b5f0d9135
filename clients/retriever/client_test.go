package retriever

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevantContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req queryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is the grid", req.Query)
		assert.Equal(t, 3, req.TopK)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"text": "The grid is a distributed compute network.", "score": 0.91, "source": "docs/overview.md"},
				{"text": "Workers earn rewards for completed jobs.", "score": 0.74, "source": "docs/rewards.md"},
			},
		})
	}))
	defer server.Close()

	client := NewRetrieverClient(server.URL)
	snippets, err := client.RelevantContext(context.Background(), "what is the grid", 3)
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	assert.Equal(t, "The grid is a distributed compute network.", snippets[0].Text)
	assert.InDelta(t, 0.91, snippets[0].Score, 0.001)
	assert.Equal(t, "docs/rewards.md", snippets[1].Source)
}

func TestRelevantContextErrors(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		client := NewRetrieverClient("http://localhost:1")
		_, err := client.RelevantContext(context.Background(), "", 3)
		assert.Error(t, err)
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewRetrieverClient(server.URL)
		_, err := client.RelevantContext(context.Background(), "anything", 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})
}
