package wikipedia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/rest.php/v1/search/page", r.URL.Path)
		assert.Equal(t, "Albert Einstein", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		json.NewEncoder(w).Encode(map[string]any{
			"pages": []map[string]any{
				{"id": 1, "key": "Albert_Einstein", "title": "Albert Einstein", "excerpt": "..."},
				{"id": 2, "key": "Einstein_family", "title": "Einstein family"},
				{"id": 3, "key": "Extra", "title": "Extra"},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	pages, err := c.Search(context.Background(), "Albert Einstein", 2)

	require.NoError(t, err)
	assert.Equal(t, []Page{
		{Title: "Albert Einstein", Key: "Albert_Einstein"},
		{Title: "Einstein family", Key: "Einstein_family"},
	}, pages)
}

func TestSummary_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rest_v1/page/summary/Albert_Einstein", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"title":   "Albert Einstein",
			"extract": "Albert Einstein was a German-born theoretical physicist.",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	summary, err := c.Summary(context.Background(), "Albert_Einstein")

	require.NoError(t, err)
	assert.Equal(t, "Albert Einstein was a German-born theoretical physicist.", summary)
}

func TestSummary_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"title":"Not found."}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	_, err := c.Summary(context.Background(), "Missing")

	assert.Error(t, err)
}

func TestSearch_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second)
	_, err := c.Search(context.Background(), "x", 2)

	assert.Error(t, err)
}

func TestPageURL(t *testing.T) {
	c := NewClient("", time.Second)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Albert_Einstein", c.PageURL("Albert_Einstein"))
}
