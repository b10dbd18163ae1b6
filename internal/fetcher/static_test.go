package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priceduck/pricewatch/internal/models"
	"github.com/priceduck/pricewatch/internal/scrape"
)

func TestStaticFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pricewatch-test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(`<span id="price">$20</span>`))
	}))
	defer server.Close()

	f := NewStaticFetcher("pricewatch-test-agent", slog.Default())

	result, err := f.Fetch(context.Background(), Request{URL: server.URL, Mode: models.RenderingStatic})
	require.NoError(t, err)
	assert.Contains(t, result.Content, `id="price"`)
	assert.Equal(t, models.RenderingStatic, result.RenderingModeUsed)
	assert.True(t, result.ChallengeResolved)
	assert.Equal(t, server.URL, result.FinalURL)
}

func TestStaticFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	f := NewStaticFetcher("ua", slog.Default())

	result, err := f.Fetch(context.Background(), Request{URL: server.URL})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, scrape.ReasonHTTPError, scrape.ReasonOf(err))
	assert.Contains(t, err.Error(), "403")
}

func TestStaticFetchNetworkError(t *testing.T) {
	f := NewStaticFetcher("ua", slog.Default())

	result, err := f.Fetch(context.Background(), Request{URL: "http://127.0.0.1:1/unreachable"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, scrape.ReasonNetworkError, scrape.ReasonOf(err))
}

func TestStaticFetchFollowsRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>final</html>"))
	}))
	defer target.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer redirecting.Close()

	f := NewStaticFetcher("ua", slog.Default())

	result, err := f.Fetch(context.Background(), Request{URL: redirecting.URL})
	require.NoError(t, err)
	assert.Equal(t, target.URL, result.FinalURL)
}

type fakeFetcher struct {
	mode models.RenderingMode
}

func (f *fakeFetcher) Fetch(ctx context.Context, req Request) (*models.FetchResult, error) {
	return &models.FetchResult{RenderingModeUsed: f.mode}, nil
}

func TestPageFetcherRouting(t *testing.T) {
	pf := NewPageFetcher(
		&fakeFetcher{mode: models.RenderingStatic},
		&fakeFetcher{mode: models.RenderingScripted},
	)
	ctx := context.Background()

	t.Run("static mode goes static", func(t *testing.T) {
		res, err := pf.Fetch(ctx, Request{Mode: models.RenderingStatic})
		require.NoError(t, err)
		assert.Equal(t, models.RenderingStatic, res.RenderingModeUsed)
	})

	t.Run("scripted mode goes scripted", func(t *testing.T) {
		res, err := pf.Fetch(ctx, Request{Mode: models.RenderingScripted})
		require.NoError(t, err)
		assert.Equal(t, models.RenderingScripted, res.RenderingModeUsed)
	})

	t.Run("ui region switch forces scripted", func(t *testing.T) {
		res, err := pf.Fetch(ctx, Request{
			Mode:       models.RenderingStatic,
			RegionCode: "DE",
			RegionConfig: &models.RegionConfig{
				SwitchType:       models.SwitchDropdown,
				SwitchSelector:   "#region",
				AvailableRegions: []string{"DE"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.RenderingScripted, res.RenderingModeUsed)
	})

	t.Run("url-param region stays static", func(t *testing.T) {
		res, err := pf.Fetch(ctx, Request{
			Mode:       models.RenderingStatic,
			RegionCode: "DE",
			RegionConfig: &models.RegionConfig{
				SwitchType:       models.SwitchURLParam,
				URLPattern:       "?country={{REGION}}",
				AvailableRegions: []string{"DE"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, models.RenderingStatic, res.RenderingModeUsed)
	})
}
