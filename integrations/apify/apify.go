package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	serviceName    = "apify"
	resultsLimit   = 99999
	dateLayout     = "02/01/2006"
	defaultTimeout = 5 * time.Minute
)

// --- Wire Types ---

type startURL struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}

type runInput struct {
	ActiveStatus   string     `json:"activeStatus"`
	IsDetailsPerAd bool       `json:"isDetailsPerAd"`
	OnlyTotal      bool       `json:"onlyTotal"`
	ResultsLimit   int        `json:"resultsLimit"`
	StartURLs      []startURL `json:"startUrls"`
}

// Dataset paths. Items are read field by field so one malformed item only
// loses the fields that have an unexpected type.
const (
	pathStartDate = "startDate"
	pathBodyText  = "snapshot.body.text"
	pathCtaText   = "snapshot.ctaText"
	pathCtaType   = "snapshot.ctaType"
	pathImages    = "snapshot.images"
	pathImageURL  = "originalImageUrl"
	pathVideos    = "snapshot.videos"
	pathVideoURL  = "videoSdUrl"
)

// --- Client ---

type Config struct {
	Token    string
	URL      string
	Timeout  time.Duration
	Location *time.Location
}

// Client runs the Facebook ads actor synchronously and normalizes its dataset.
type Client struct {
	token      string
	endpoint   string
	location   *time.Location
	httpClient *http.Client
	newID      func() string
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		token:      cfg.Token,
		endpoint:   cfg.URL,
		location:   loc,
		httpClient: &http.Client{Timeout: timeout},
		newID:      uuid.NewString,
	}
}

func (c *Client) Fetch(ctx context.Context, pageURL string) ([]domainAds.AdItem, error) {
	body, err := json.Marshal(runInput{
		ActiveStatus:   "active",
		IsDetailsPerAd: true,
		OnlyTotal:      false,
		ResultsLimit:   resultsLimit,
		StartURLs:      []startURL{{URL: pageURL, Method: http.MethodGet}},
	})
	if err != nil {
		return nil, pkgError.NewUpstreamError(serviceName, err)
	}

	target, err := c.requestURL()
	if err != nil {
		return nil, pkgError.NewUpstreamError(serviceName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, pkgError.NewUpstreamError(serviceName, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgError.NewUpstreamError(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, pkgError.NewUpstreamError(serviceName,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgError.NewUpstreamError(serviceName, fmt.Errorf("read dataset: %w", err))
	}
	if !gjson.ValidBytes(payload) {
		return nil, pkgError.NewUpstreamError(serviceName, errors.New("decode dataset: invalid JSON"))
	}
	dataset := gjson.ParseBytes(payload)
	if !dataset.IsArray() {
		return nil, pkgError.NewUpstreamError(serviceName, fmt.Errorf("decode dataset: expected an array, got %s", dataset.Type))
	}

	raw := dataset.Array()
	items := make([]domainAds.AdItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, c.normalize(r))
	}

	logrus.WithFields(logrus.Fields{
		"page_url": pageURL,
		"items":    len(items),
		"elapsed":  time.Since(start).Round(time.Millisecond).String(),
	}).Info("[SCRAPE] Dataset fetched")

	return items, nil
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) normalize(r gjson.Result) domainAds.AdItem {
	item := domainAds.AdItem{
		ID:      c.newID(),
		Text:    stringAt(r, pathBodyText),
		CtaText: stringAt(r, pathCtaText),
		CtaType: stringAt(r, pathCtaType),
	}

	// Zero and non-numeric dates count as missing.
	if d := r.Get(pathStartDate); d.Type == gjson.Number && d.Float() > 0 {
		item.StartDate = time.Unix(d.Int(), 0).In(c.location).Format(dateLayout)
	}

	images := urlsAt(r, pathImages, pathImageURL)
	videos := urlsAt(r, pathVideos, pathVideoURL)
	item.Media, item.MediaType = domainAds.ClassifyMedia(images, videos)
	return item
}

func stringAt(r gjson.Result, path string) string {
	if v := r.Get(path); v.Type == gjson.String {
		return v.Str
	}
	return ""
}

// urlsAt collects the string field key of every element of the array at path.
func urlsAt(r gjson.Result, path, key string) []string {
	list := r.Get(path)
	if !list.IsArray() {
		return nil
	}
	var urls []string
	for _, el := range list.Array() {
		if u := stringAt(el, key); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
