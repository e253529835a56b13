package sentiment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmsentinel/market-sentinel/internal/config"
)

func TestStaticNeutral(t *testing.T) {
	score, label, err := Neutral().Score(context.Background(), "GC=F")
	require.NoError(t, err)
	assert.Equal(t, 0.5, score)
	assert.Equal(t, LabelNeutral, label)
}

func TestKeywordScorer_NoHeadlinesIsNeutral(t *testing.T) {
	score, label := NewKeywordScorer().Score(nil)
	assert.Equal(t, 0.5, score)
	assert.Equal(t, LabelNeutral, label)
}

func TestKeywordScorer_BullishHeadlines(t *testing.T) {
	score, label := NewKeywordScorer().Score([]Headline{
		{Title: "Gold prices surge to record high on safe haven demand"},
		{Title: "Precious metals rally as dollar weakens"},
	})

	assert.Greater(t, score, 0.5)
	assert.LessOrEqual(t, score, 0.9)
	assert.Contains(t, []string{LabelPositive, LabelVeryPositive}, label)
}

func TestKeywordScorer_BearishHeadlines(t *testing.T) {
	score, label := NewKeywordScorer().Score([]Headline{
		{Title: "Gold tumbles as yields climb higher"},
		{Title: "Precious metals selloff deepens"},
		{Title: "Silver sinks to three-month low"},
	})

	assert.Less(t, score, 0.5)
	assert.GreaterOrEqual(t, score, 0.1)
	assert.Contains(t, []string{LabelNegative, LabelVeryNegative}, label)
}

func TestKeywordScorer_MixedHeadlinesIsNeutral(t *testing.T) {
	score, label := NewKeywordScorer().Score([]Headline{
		{Title: "Gold rally continues"},
		{Title: "Gold plunge feared by analysts"},
	})

	assert.Equal(t, 0.5, score)
	assert.Equal(t, LabelNeutral, label)
}

func TestKeywordScorer_NoKeywordMatchesIsNeutral(t *testing.T) {
	score, label := NewKeywordScorer().Score([]Headline{
		{Title: "Central bank meeting scheduled for Thursday"},
	})

	assert.Equal(t, 0.5, score)
	assert.Equal(t, LabelNeutral, label)
}

func newTestClient(serverURL string) *NewsClient {
	c := NewNewsClient(config.NewsConfig{APIKey: "test-key", MaxHeadlines: 10})
	c.baseURL = serverURL
	return c
}

func TestNewsClient_ParsesHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "Gold", r.URL.Query().Get("q"))
		assert.Equal(t, "business", r.URL.Query().Get("category"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"results": [
				{"title": "Gold surges", "source_name": "Wire", "pubDate": "2026-08-30 09:00:00"},
				{"title": "Gold surges", "source_name": "Duplicate", "pubDate": "2026-08-30 09:05:00"},
				{"title": "", "source_name": "Empty"},
				{"title": "Dollar steady", "source_name": "Desk", "pubDate": "2026-08-30 08:00:00"}
			]
		}`))
	}))
	defer srv.Close()

	headlines, err := newTestClient(srv.URL).Headlines(context.Background(), "GC=F")
	require.NoError(t, err)
	require.Len(t, headlines, 2)
	assert.Equal(t, "Gold surges", headlines[0].Title)
	assert.Equal(t, "Wire", headlines[0].Source)
	assert.Equal(t, "Dollar steady", headlines[1].Title)
}

func TestNewsClient_RateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Headlines(context.Background(), "GC=F")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestNewsClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "error", "message": "invalid key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Headlines(context.Background(), "GC=F")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid key")
}

func TestNews_FetchFailureDegradesToNeutral(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider := NewNews(newTestClient(srv.URL))
	score, label, err := provider.Score(context.Background(), "GC=F")
	require.NoError(t, err)
	assert.Equal(t, 0.5, score)
	assert.Equal(t, LabelNeutral, label)
}

func TestNews_ScoresFetchedHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"results": [{"title": "Gold rally extends on safe haven buying", "source_name": "Wire"}]
		}`))
	}))
	defer srv.Close()

	provider := NewNews(newTestClient(srv.URL))
	score, label, err := provider.Score(context.Background(), "GC=F")
	require.NoError(t, err)
	assert.Greater(t, score, 0.5)
	assert.NotEqual(t, LabelNeutral, label)
}
