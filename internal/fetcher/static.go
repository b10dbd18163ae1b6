package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/priceduck/pricewatch/internal/models"
	"github.com/priceduck/pricewatch/internal/scrape"
)

// StaticFetcher retrieves pages whose price content is present in the
// initial HTTP response.
type StaticFetcher struct {
	userAgent string
	logger    *slog.Logger
}

func NewStaticFetcher(userAgent string, logger *slog.Logger) *StaticFetcher {
	return &StaticFetcher{
		userAgent: userAgent,
		logger:    logger.With("component", "static_fetcher"),
	}
}

func (f *StaticFetcher) Fetch(ctx context.Context, req Request) (*models.FetchResult, error) {
	start := time.Now()

	client := &http.Client{Timeout: req.renderTimeout()}
	if req.Proxy != nil {
		proxyURL, err := req.Proxy.URL()
		if err != nil {
			return nil, scrape.Wrap(scrape.ReasonNetworkError, err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, scrape.Wrap(scrape.ReasonNetworkError, err)
	}
	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, scrape.Wrap(scrape.ReasonNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, scrape.Errorf(scrape.ReasonHTTPError, "status %d fetching %s", resp.StatusCode, req.URL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, scrape.Wrap(scrape.ReasonNetworkError, err)
	}

	f.logger.Debug("static fetch complete", "url", req.URL, "bytes", len(body), "elapsed", time.Since(start))

	return &models.FetchResult{
		Content:           string(body),
		FinalURL:          resp.Request.URL.String(),
		RenderingModeUsed: models.RenderingStatic,
		ChallengeResolved: true,
		Elapsed:           time.Since(start),
	}, nil
}
