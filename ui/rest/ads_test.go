package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	domainAnalysis "github.com/AzielCF/az-adlib/domains/analysis"
	"github.com/AzielCF/az-adlib/domains/health"
	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	"github.com/AzielCF/az-adlib/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdsService struct {
	result    domainAds.ScrapeResult
	item      domainAds.AdItem
	deleted   int64
	err       error
	lastScrape domainAds.ScrapeRequest
}

func (f *fakeAdsService) GetAds(ctx context.Context, request domainAds.ScrapeRequest) (domainAds.ScrapeResult, error) {
	f.lastScrape = request
	return f.result, f.err
}

func (f *fakeAdsService) ClearCache(ctx context.Context, request domainAds.ClearCacheRequest) (int64, error) {
	return f.deleted, f.err
}

func (f *fakeAdsService) FindByID(ctx context.Context, id string) (domainAds.AdItem, error) {
	return f.item, f.err
}

type fakeAnalysisService struct {
	result domainAnalysis.AnalyzeResult
	err    error
}

func (f *fakeAnalysisService) Analyze(ctx context.Context, request domainAnalysis.AnalyzeRequest) (domainAnalysis.AnalyzeResult, error) {
	return f.result, f.err
}

type fakeHealthService struct{ report health.Report }

func (f fakeHealthService) Check(ctx context.Context) health.Report { return f.report }

func newTestApp(ads domainAds.IAdsUsecase, analysis domainAnalysis.IAnalysisUsecase) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Recovery())
	InitRestApp(app)
	api := app.Group("/api")
	InitRestAds(api, ads)
	InitRestAnalysis(api, analysis)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestRoot(t *testing.T) {
	app := newTestApp(&fakeAdsService{}, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Facebook Ads Scraper API is running", body["message"])
}

func TestScrape_ReturnsEnvelope(t *testing.T) {
	svc := &fakeAdsService{result: domainAds.ScrapeResult{
		Items:  []domainAds.AdItem{{ID: "a1", Text: "Hello", Media: []string{}, MediaType: domainAds.MediaTypeNone}},
		Count:  1,
		Source: domainAds.SourceCache,
	}}
	app := newTestApp(svc, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodPost, "/api/scrape", `{"pageUrl":"https://fb.com/acme","forceRefresh":true}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["status"])
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "cache", body["source"])
	require.Len(t, body["data"], 1)
	assert.Equal(t, "https://fb.com/acme", svc.lastScrape.PageURL)
	assert.True(t, svc.lastScrape.ForceRefresh)
}

func TestScrape_EmptyResultRendersEmptyArray(t *testing.T) {
	svc := &fakeAdsService{result: domainAds.ScrapeResult{Source: domainAds.SourceExternal}}
	app := newTestApp(svc, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodPost, "/api/scrape", `{"pageUrl":"https://fb.com/acme"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, body["data"])
}

func TestScrape_ValidationError(t *testing.T) {
	svc := &fakeAdsService{err: pkgError.ValidationError("Page URL is required")}
	app := newTestApp(svc, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodPost, "/api/scrape", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Page URL is required", body["message"])
}

func TestScrape_MalformedBody(t *testing.T) {
	app := newTestApp(&fakeAdsService{}, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodPost, "/api/scrape", `{"pageUrl":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestScrape_UpstreamFailure(t *testing.T) {
	svc := &fakeAdsService{err: pkgError.NewUpstreamError("apify", errors.New("status 502"))}
	app := newTestApp(svc, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodPost, "/api/scrape", `{"pageUrl":"https://fb.com/acme"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "apify request failed: status 502", body["message"])
}

func TestClearCache(t *testing.T) {
	svc := &fakeAdsService{deleted: 1}
	app := newTestApp(svc, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodDelete, "/api/cache", `{"pageUrl":"https://fb.com/acme"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Cache cleared for https://fb.com/acme", body["message"])
	assert.EqualValues(t, 1, body["deletedCount"])
}

func TestClearCache_NotFound(t *testing.T) {
	svc := &fakeAdsService{err: pkgError.NotFoundError("No cache found for this page URL")}
	app := newTestApp(svc, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodDelete, "/api/cache", `{"pageUrl":"https://fb.com/none"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "No cache found for this page URL", body["message"])
}

func TestGetAd(t *testing.T) {
	svc := &fakeAdsService{item: domainAds.AdItem{ID: "a1", Text: "Hello", Media: []string{}, MediaType: domainAds.MediaTypeNone}}
	app := newTestApp(svc, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodGet, "/api/ads/a1", "")
	assert.Equal(t, http.StatusOK, status)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a1", data["id"])
	assert.Equal(t, "none", data["mediaType"])
}

func TestGetAd_NotFound(t *testing.T) {
	svc := &fakeAdsService{err: pkgError.NotFoundError("Ad not found")}
	app := newTestApp(svc, &fakeAnalysisService{})

	status, body := doJSON(t, app, http.MethodGet, "/api/ads/missing", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Ad not found", body["message"])
}

func TestAnalyze(t *testing.T) {
	svc := &fakeAnalysisService{result: domainAnalysis.AnalyzeResult{
		Ad:      domainAds.AdItem{ID: "a1", MediaType: domainAds.MediaTypeNone},
		Content: &domainAnalysis.ContentAnalysis{Analysis: "solid hook"},
		Media:   domainAnalysis.Notice{Analysis: domainAnalysis.NoticeNoMedia},
	}}
	app := newTestApp(&fakeAdsService{}, svc)

	status, body := doJSON(t, app, http.MethodPost, "/api/ai/analyze", `{"adId":"a1"}`)
	assert.Equal(t, http.StatusOK, status)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"analysis": "No media data"}, data["media"])
	assert.Nil(t, data["video"])
}

func TestAnalyze_MissingAdID(t *testing.T) {
	svc := &fakeAnalysisService{err: pkgError.ValidationError("Ad ID is required")}
	app := newTestApp(&fakeAdsService{}, svc)

	status, body := doJSON(t, app, http.MethodPost, "/api/ai/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Ad ID is required", body["message"])
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	InitRestHealth(app, fakeHealthService{report: health.Report{Healthy: true}})

	status, body := doJSON(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "success", body["status"])

	app = fiber.New()
	InitRestHealth(app, fakeHealthService{report: health.Report{Healthy: false}})
	status, body = doJSON(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "error", body["status"])
}
