package apify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

const datasetFixture = `[
  {"startDate": 1704067200, "snapshot": {"body": {"text": "Fresh bread daily"}, "ctaText": "Shop now", "ctaType": "SHOP_NOW",
    "images": [{"originalImageUrl": "https://cdn.example/a.jpg"}]}},
  {"startDate": 1706745600, "snapshot": {"body": {"text": "Two looks"}, "ctaText": "Learn more", "ctaType": "LEARN_MORE",
    "images": [{"originalImageUrl": "https://cdn.example/b.png"}]}},
  {"snapshot": {"videos": [{"videoSdUrl": "https://cdn.example/c.mp4"}]}}
]`

func newSequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}

func TestFetch_NormalizesDataset(t *testing.T) {
	var (
		gotMethod string
		gotToken  string
		gotInput  runInput
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotToken = r.URL.Query().Get("token")
		_ = json.NewDecoder(r.Body).Decode(&gotInput)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, datasetFixture)
	}))
	defer srv.Close()

	c := NewClient(Config{Token: "secret", URL: srv.URL})
	c.newID = newSequentialIDs()

	items, err := c.Fetch(context.Background(), "https://facebook.com/ads/library/?id=1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, "active", gotInput.ActiveStatus)
	assert.True(t, gotInput.IsDetailsPerAd)
	assert.Equal(t, resultsLimit, gotInput.ResultsLimit)
	require.Len(t, gotInput.StartURLs, 1)
	assert.Equal(t, "https://facebook.com/ads/library/?id=1", gotInput.StartURLs[0].URL)
	assert.Equal(t, "GET", gotInput.StartURLs[0].Method)

	require.Len(t, items, 3)

	assert.Equal(t, "id-1", items[0].ID)
	assert.Equal(t, "Fresh bread daily", items[0].Text)
	assert.Equal(t, "Shop now", items[0].CtaText)
	assert.Equal(t, "SHOP_NOW", items[0].CtaType)
	assert.Equal(t, "01/01/2024", items[0].StartDate)
	assert.Equal(t, domainAds.MediaTypeImage, items[0].MediaType)
	assert.Equal(t, []string{"https://cdn.example/a.jpg"}, items[0].Media)

	assert.Equal(t, "01/02/2024", items[1].StartDate)
	assert.Equal(t, domainAds.MediaTypeImage, items[1].MediaType)

	assert.Equal(t, "", items[2].Text)
	assert.Equal(t, "", items[2].StartDate)
	assert.Equal(t, domainAds.MediaTypeVideo, items[2].MediaType)
	assert.Equal(t, []string{"https://cdn.example/c.mp4"}, items[2].Media)
}

func TestFetch_GeneratesUniqueIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, datasetFixture)
	}))
	defer srv.Close()

	items, err := NewClient(Config{URL: srv.URL}).Fetch(context.Background(), "https://page")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, it := range items {
		assert.Len(t, it.ID, 36)
		assert.False(t, seen[it.ID])
		seen[it.ID] = true
	}
}

func TestFetch_MixedMediaAndEmptySnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
		  {"snapshot": {"images": [{"originalImageUrl": "https://i/1.jpg"}], "videos": [{"videoSdUrl": "https://v/1.mp4"}]}},
		  {}
		]`)
	}))
	defer srv.Close()

	items, err := NewClient(Config{URL: srv.URL}).Fetch(context.Background(), "https://page")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, domainAds.MediaTypeMixed, items[0].MediaType)
	assert.Equal(t, []string{"https://i/1.jpg", "https://v/1.mp4"}, items[0].Media)

	assert.Equal(t, domainAds.MediaTypeNone, items[1].MediaType)
	assert.NotNil(t, items[1].Media)
	assert.Empty(t, items[1].Media)
}

func TestFetch_StartDateUsesLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 2024-01-01T23:30:00Z
		_, _ = io.WriteString(w, `[{"startDate": 1704151800}]`)
	}))
	defer srv.Close()

	loc := time.FixedZone("UTC+2", 2*60*60)
	items, err := NewClient(Config{URL: srv.URL, Location: loc}).Fetch(context.Background(), "https://page")
	require.NoError(t, err)
	assert.Equal(t, "02/01/2024", items[0].StartDate)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"invalid token"}`)
	}))
	defer srv.Close()

	_, err := NewClient(Config{URL: srv.URL}).Fetch(context.Background(), "https://page")
	require.Error(t, err)

	var upstream *pkgError.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "apify", upstream.Service)
	assert.Contains(t, err.Error(), "status 401")
}

func TestFetch_UndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"not":"a list"}`)
	}))
	defer srv.Close()

	_, err := NewClient(Config{URL: srv.URL}).Fetch(context.Background(), "https://page")

	var upstream *pkgError.UpstreamError
	assert.True(t, errors.As(err, &upstream))
}

func TestFetch_TransportError(t *testing.T) {
	c := NewClient(Config{URL: "https://apify.test/run"})
	c.httpClient = &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		}),
	}

	_, err := c.Fetch(context.Background(), "https://page")

	var upstream *pkgError.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFetch_MalformedItemKeepsTheRest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
		  {"startDate": 1704067200, "snapshot": {"body": {"text": "ok"}, "images": [{"originalImageUrl": "https://i/1.jpg"}]}},
		  {"startDate": "1704067200", "snapshot": {"body": "plain string body", "ctaText": null, "ctaType": 7,
		    "images": {"originalImageUrl": "https://i/2.jpg"}, "videos": [{"videoSdUrl": 3}, {"videoSdUrl": "https://v/2.mp4"}]}},
		  "not an object"
		]`)
	}))
	defer srv.Close()

	items, err := NewClient(Config{URL: srv.URL}).Fetch(context.Background(), "https://page")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "ok", items[0].Text)
	assert.Equal(t, "01/01/2024", items[0].StartDate)
	assert.Equal(t, domainAds.MediaTypeImage, items[0].MediaType)

	assert.Equal(t, "", items[1].Text)
	assert.Equal(t, "", items[1].StartDate)
	assert.Equal(t, "", items[1].CtaText)
	assert.Equal(t, "", items[1].CtaType)
	assert.Equal(t, domainAds.MediaTypeVideo, items[1].MediaType)
	assert.Equal(t, []string{"https://v/2.mp4"}, items[1].Media)

	assert.NotEmpty(t, items[2].ID)
	assert.Equal(t, domainAds.MediaTypeNone, items[2].MediaType)
}

func TestFetch_ZeroStartDateIsBlank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"startDate": 0}]`)
	}))
	defer srv.Close()

	items, err := NewClient(Config{URL: srv.URL}).Fetch(context.Background(), "https://page")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "", items[0].StartDate)
}

func TestFetch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"startDate": 1`)
	}))
	defer srv.Close()

	_, err := NewClient(Config{URL: srv.URL}).Fetch(context.Background(), "https://page")

	var upstream *pkgError.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Contains(t, err.Error(), "decode dataset")
}
