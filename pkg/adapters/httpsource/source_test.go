package httpsource_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyattjouan/stagehand/pkg/adapters/httpsource"
	"github.com/wyattjouan/stagehand/pkg/domain"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/42":
			w.Write([]byte(`{"targets":[]}`))
		case "/projects/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := httpsource.New(srv.URL)

	t.Run("found", func(t *testing.T) {
		data, err := client.Fetch(context.Background(), "42")
		require.NoError(t, err)
		assert.Equal(t, `{"targets":[]}`, string(data))
	})

	t.Run("not found maps to typed error", func(t *testing.T) {
		_, err := client.Fetch(context.Background(), "missing")
		var notFound *domain.ProjectNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "missing", notFound.ID)
	})

	t.Run("server error", func(t *testing.T) {
		_, err := client.Fetch(context.Background(), "broken")
		assert.ErrorContains(t, err, "unexpected status")
	})
}

func TestRecentEntries(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/logs/42", r.URL.Path)
		gotLimit = r.URL.Query().Get("limit")
		json.NewEncoder(w).Encode([]domain.CloudEntry{
			{Verb: domain.CloudSet, Name: "☁hs", Value: 7},
		})
	}))
	defer srv.Close()

	client := httpsource.New(srv.URL)
	entries, err := client.RecentEntries(context.Background(), "42", 25)
	require.NoError(t, err)
	assert.Equal(t, "25", gotLimit)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.CloudSet, entries[0].Verb)
	assert.Equal(t, "☁hs", entries[0].Name)
}

func TestFetch_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := httpsource.New(srv.URL)
	_, err := client.Fetch(ctx, "42")
	assert.ErrorIs(t, err, context.Canceled)
}
