package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/AzielCF/az-adlib/core/config"
	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

type cacheJanitor struct {
	store     domainAds.ICacheRepository
	retention time.Duration
	interval  time.Duration
	now       func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCacheJanitor(store domainAds.ICacheRepository, retention, interval time.Duration) domainAds.ICacheJanitor {
	if retention <= 0 {
		retention = config.DefaultRetention
	}
	if interval <= 0 {
		interval = config.DefaultSweepInterval
	}
	return &cacheJanitor{
		store:     store,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Sweep deletes every entry created before now minus the retention window.
func (j *cacheJanitor) Sweep(ctx context.Context) (int64, error) {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("[JANITOR] Sweep failed")
		return 0, err
	}

	logrus.WithFields(logrus.Fields{
		"deleted": deleted,
		"cutoff":  humanize.Time(cutoff),
	}).Info("[JANITOR] Sweep completed")
	return deleted, nil
}

// Start runs a sweep immediately and then once per interval until ctx is
// cancelled or Stop is called. Calling Start twice is a no-op.
func (j *cacheJanitor) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		logrus.Infof("[JANITOR] Started (every %s)", j.interval)
		for {
			_, _ = j.Sweep(loopCtx)
			select {
			case <-loopCtx.Done():
				logrus.Info("[JANITOR] Stopped")
				return
			case <-time.After(j.interval):
			}
		}
	}(j.done)
}

func (j *cacheJanitor) Stop() {
	j.mu.Lock()
	cancel, done := j.cancel, j.done
	j.cancel, j.done = nil, nil
	j.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
