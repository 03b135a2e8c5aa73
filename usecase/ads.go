package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	"github.com/AzielCF/az-adlib/validations"
	"github.com/sirupsen/logrus"
)

const (
	msgCacheNotFound = "No cache found for this page URL"
	msgAdNotFound    = "Ad not found"
)

type adsService struct {
	store   domainAds.ICacheRepository
	index   domainAds.IAdIndex
	fetcher domainAds.IAdFetcher
	now     func() time.Time
}

// NewAdsService wires the cache controller. index may be nil.
func NewAdsService(store domainAds.ICacheRepository, index domainAds.IAdIndex, fetcher domainAds.IAdFetcher) domainAds.IAdsUsecase {
	return &adsService{
		store:   store,
		index:   index,
		fetcher: fetcher,
		now:     time.Now,
	}
}

func (s *adsService) GetAds(ctx context.Context, request domainAds.ScrapeRequest) (domainAds.ScrapeResult, error) {
	if err := validations.ValidateScrape(ctx, request); err != nil {
		return domainAds.ScrapeResult{}, err
	}
	pageURL := strings.TrimSpace(request.PageURL)
	log := logrus.WithField("page_url", pageURL)

	if !request.ForceRefresh {
		entry, err := s.store.FindByPageURL(ctx, pageURL)
		switch {
		case err == nil:
			log.WithField("count", len(entry.Data)).Info("[CACHE] Serving cached ads")
			return domainAds.ScrapeResult{Items: entry.Data, Count: len(entry.Data), Source: domainAds.SourceCache}, nil
		case errors.Is(err, domainAds.ErrCacheNotFound):
			log.Debug("[CACHE] Miss")
		default:
			return domainAds.ScrapeResult{}, pkgError.NewPersistenceError("read cache", err)
		}
	} else {
		log.Info("[CACHE] Forced refresh requested")
	}

	items, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		log.WithError(err).Error("[SCRAPE] Fetch failed")
		var generic pkgError.GenericError
		if errors.As(err, &generic) {
			return domainAds.ScrapeResult{}, err
		}
		return domainAds.ScrapeResult{}, pkgError.NewUpstreamError("scraper", err)
	}
	if items == nil {
		items = []domainAds.AdItem{}
	}

	entry := domainAds.CacheEntry{
		PageURL:   pageURL,
		Data:      items,
		Count:     len(items),
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Replace(ctx, entry); err != nil {
		log.WithError(err).Error("[CACHE] Failed to persist scrape result")
		return domainAds.ScrapeResult{}, pkgError.NewPersistenceError("save cache", err)
	}
	s.indexItems(ctx, pageURL, items)

	log.WithField("count", len(items)).Info("[CACHE] Stored fresh ads")
	return domainAds.ScrapeResult{Items: items, Count: len(items), Source: domainAds.SourceExternal}, nil
}

func (s *adsService) ClearCache(ctx context.Context, request domainAds.ClearCacheRequest) (int64, error) {
	if err := validations.ValidateClearCache(ctx, request); err != nil {
		return 0, err
	}
	pageURL := strings.TrimSpace(request.PageURL)

	var ids []string
	if s.index != nil {
		if entry, err := s.store.FindByPageURL(ctx, pageURL); err == nil {
			for _, it := range entry.Data {
				ids = append(ids, it.ID)
			}
		}
	}

	deleted, err := s.store.DeleteByPageURL(ctx, pageURL)
	if err != nil {
		return 0, pkgError.NewPersistenceError("clear cache", err)
	}
	if deleted == 0 {
		return 0, pkgError.NotFoundError(msgCacheNotFound)
	}

	for _, id := range ids {
		if err := s.index.Remove(ctx, id); err != nil {
			logrus.WithError(err).WithField("ad_id", id).Warn("[CACHE] Failed to drop index entry")
		}
	}

	logrus.WithFields(logrus.Fields{"page_url": pageURL, "deleted": deleted}).Info("[CACHE] Cleared")
	return deleted, nil
}

// FindByID returns the first cached ad with the given id. The index is only a
// hint; a miss or stale hint falls back to scanning every entry, newest first.
func (s *adsService) FindByID(ctx context.Context, id string) (domainAds.AdItem, error) {
	if err := validations.ValidateAdID(ctx, id); err != nil {
		return domainAds.AdItem{}, err
	}
	id = strings.TrimSpace(id)

	if item, ok := s.findViaIndex(ctx, id); ok {
		return item, nil
	}

	entries, err := s.store.List(ctx)
	if err != nil {
		return domainAds.AdItem{}, pkgError.NewPersistenceError("scan cache", err)
	}
	for _, entry := range entries {
		if item, ok := entry.FindItem(id); ok {
			return item, nil
		}
	}
	return domainAds.AdItem{}, pkgError.NotFoundError(msgAdNotFound)
}

func (s *adsService) findViaIndex(ctx context.Context, id string) (domainAds.AdItem, bool) {
	if s.index == nil {
		return domainAds.AdItem{}, false
	}
	log := logrus.WithField("ad_id", id)

	pageURL, ok, err := s.index.Lookup(ctx, id)
	if err != nil {
		log.WithError(err).Warn("[CACHE] Index lookup failed, scanning")
		return domainAds.AdItem{}, false
	}
	if !ok {
		return domainAds.AdItem{}, false
	}

	entry, err := s.store.FindByPageURL(ctx, pageURL)
	if err == nil {
		if item, found := entry.FindItem(id); found {
			return item, true
		}
	} else if !errors.Is(err, domainAds.ErrCacheNotFound) {
		log.WithError(err).Warn("[CACHE] Failed to load indexed entry, scanning")
		return domainAds.AdItem{}, false
	}

	log.Debug("[CACHE] Stale index entry")
	if err := s.index.Remove(ctx, id); err != nil {
		log.WithError(err).Warn("[CACHE] Failed to drop stale index entry")
	}
	return domainAds.AdItem{}, false
}

func (s *adsService) indexItems(ctx context.Context, pageURL string, items []domainAds.AdItem) {
	if s.index == nil || len(items) == 0 {
		return
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	if err := s.index.Put(ctx, pageURL, ids); err != nil {
		logrus.WithError(err).WithField("page_url", pageURL).Warn("[CACHE] Failed to update ad index")
	}
}
