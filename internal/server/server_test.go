package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/newsfeed/internal/engine"
	"github.com/0x0BSoD/newsfeed/internal/feedstore"
	"github.com/0x0BSoD/newsfeed/internal/model"
	"github.com/0x0BSoD/newsfeed/internal/provider"
	"github.com/0x0BSoD/newsfeed/internal/refresher"
	"github.com/0x0BSoD/newsfeed/internal/server"
)

type newsBody struct {
	State         string       `json:"state"`
	Items         []model.Item `json:"items"`
	Trending      []model.Item `json:"trending"`
	IsRefreshing  bool         `json:"isRefreshing"`
	LastError     string       `json:"lastError"`
	LastRefreshAt *time.Time   `json:"lastRefreshAt"`
}

func newTestServer(t *testing.T, src provider.Provider) (*httptest.Server, *engine.Engine) {
	t.Helper()

	store := feedstore.New()
	feed := engine.New(store, refresher.New(store, src, nil, time.Hour, ""))
	srv := httptest.NewServer(server.New(feed))
	t.Cleanup(srv.Close)
	return srv, feed
}

func samples(context.Context, string) ([]model.RawItem, error) {
	return provider.SampleNews(time.Now()), nil
}

func getNews(t *testing.T, url string) newsBody {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body newsBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestNews_EmptyThenRefreshed(t *testing.T) {
	srv, feed := newTestServer(t, provider.Func(samples))

	body := getNews(t, srv.URL+"/api/news")
	assert.Equal(t, "empty", body.State)
	assert.Empty(t, body.Items)
	assert.Nil(t, body.LastRefreshAt)

	resp, err := http.Post(srv.URL+"/api/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	feed.Wait()

	body = getNews(t, srv.URL+"/api/news")
	assert.Equal(t, "ready", body.State)
	assert.Len(t, body.Items, 5)
	assert.Len(t, body.Trending, 2)
	assert.NotNil(t, body.LastRefreshAt)
}

func TestNews_Filters(t *testing.T) {
	srv, feed := newTestServer(t, provider.Func(samples))
	feed.RefreshNow("")
	feed.Wait()

	body := getNews(t, srv.URL+"/api/news?category=ML+Models&q=claude")
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Anthropic's Claude 4 Introduces Advanced RAG Architecture", body.Items[0].Title)
	assert.Len(t, body.Trending, 1)
}

func TestNews_ErrorState(t *testing.T) {
	srv, feed := newTestServer(t, provider.Func(func(context.Context, string) ([]model.RawItem, error) {
		return nil, &provider.Error{Provider: "openai", Message: "invalid api key"}
	}))
	feed.RefreshNow("")
	feed.Wait()

	body := getNews(t, srv.URL+"/api/news")
	assert.Equal(t, "error", body.State)
	assert.Equal(t, "openai: invalid api key", body.LastError)
}

func TestItem(t *testing.T) {
	srv, feed := newTestServer(t, provider.Func(samples))
	feed.RefreshNow("")
	feed.Wait()

	resp, err := http.Get(srv.URL + "/api/news/perplexity-ai-500m-series-c-9b-valuation")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var item struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.NotEmpty(t, item.ID)
	assert.Contains(t, item.Body, "Series C")

	missing, err := http.Get(srv.URL + "/api/news/unknown")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCategories(t *testing.T) {
	srv, _ := newTestServer(t, provider.Func(samples))

	resp, err := http.Get(srv.URL + "/api/categories")
	require.NoError(t, err)
	defer resp.Body.Close()

	var categories []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	assert.Equal(t, model.CategoryAll, categories[0])
	assert.Len(t, categories, len(model.Categories)+1)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, provider.Func(samples))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	srv, feed := newTestServer(t, provider.Func(samples))
	feed.RefreshNow("")
	feed.Wait()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `newsfeed_refresh_cycles_total{result="success"}`)
	assert.Contains(t, string(raw), "newsfeed_refresh_cycle_duration_seconds")
}
