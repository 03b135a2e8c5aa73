package ads

import (
	"context"
	"errors"
	"time"
)

type MediaType string

const (
	MediaTypeNone  MediaType = "none"
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeMixed MediaType = "mixed"
)

type Source string

const (
	SourceCache    Source = "cache"
	SourceExternal Source = "external"
)

// ErrCacheNotFound is returned by stores when a page has no entry.
var ErrCacheNotFound = errors.New("no cache found for this page URL")

// AdItem is one normalized ad from the ad library.
type AdItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CtaText   string    `json:"ctaText"`
	CtaType   string    `json:"ctaType"`
	StartDate string    `json:"startDate"`
	Media     []string  `json:"media"`
	MediaType MediaType `json:"mediaType"`
}

// HasImages reports whether image analysis applies to the ad.
func (a AdItem) HasImages() bool {
	return a.MediaType == MediaTypeImage || a.MediaType == MediaTypeMixed
}

// HasVideos reports whether video analysis applies to the ad.
func (a AdItem) HasVideos() bool {
	return a.MediaType == MediaTypeVideo || a.MediaType == MediaTypeMixed
}

// ClassifyMedia merges image and video URLs (images first) and derives the media type.
func ClassifyMedia(images, videos []string) ([]string, MediaType) {
	media := make([]string, 0, len(images)+len(videos))
	mediaType := MediaTypeNone

	if len(images) > 0 {
		media = append(media, images...)
		mediaType = MediaTypeImage
	}
	if len(videos) > 0 {
		media = append(media, videos...)
		if mediaType == MediaTypeImage {
			mediaType = MediaTypeMixed
		} else {
			mediaType = MediaTypeVideo
		}
	}

	return media, mediaType
}

// CacheEntry is the stored scrape result for one page URL.
type CacheEntry struct {
	PageURL   string    `json:"pageUrl"`
	Data      []AdItem  `json:"data"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

// FindItem returns the first item in the entry with the given id.
func (e CacheEntry) FindItem(id string) (AdItem, bool) {
	for _, item := range e.Data {
		if item.ID == id {
			return item, true
		}
	}
	return AdItem{}, false
}

type ScrapeRequest struct {
	PageURL      string `json:"pageUrl"`
	ForceRefresh bool   `json:"forceRefresh"`
}

type ClearCacheRequest struct {
	PageURL string `json:"pageUrl"`
}

type ScrapeResult struct {
	Items  []AdItem
	Count  int
	Source Source
}

// IAdsUsecase is the cache controller plus ad lookup.
type IAdsUsecase interface {
	GetAds(ctx context.Context, request ScrapeRequest) (ScrapeResult, error)
	ClearCache(ctx context.Context, request ClearCacheRequest) (int64, error)
	FindByID(ctx context.Context, id string) (AdItem, error)
}

// IAdFetcher pulls fresh ads for a page from the scraping service.
type IAdFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]AdItem, error)
}

// ICacheRepository persists cache entries. Replace must be atomic: either the
// old entry is gone and the new one stored, or nothing changed.
type ICacheRepository interface {
	Init(ctx context.Context) error
	FindByPageURL(ctx context.Context, pageURL string) (*CacheEntry, error)
	Replace(ctx context.Context, entry CacheEntry) error
	DeleteByPageURL(ctx context.Context, pageURL string) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	List(ctx context.Context) ([]CacheEntry, error)
	Ping(ctx context.Context) error
}

// IAdIndex maps ad ids to the page URL whose entry holds them. Lookups are hints
// and must be verified against the store.
type IAdIndex interface {
	Put(ctx context.Context, pageURL string, ids []string) error
	Lookup(ctx context.Context, id string) (string, bool, error)
	Remove(ctx context.Context, id string) error
}

// ICacheJanitor purges entries past the retention window.
type ICacheJanitor interface {
	Sweep(ctx context.Context) (int64, error)
	Start(ctx context.Context)
	Stop()
}
