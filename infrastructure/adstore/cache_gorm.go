package adstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	"gorm.io/gorm"
)

// --- Persistence Models ---

type cacheEntryModel struct {
	ID        uint               `gorm:"primaryKey;autoIncrement;column:id"`
	PageURL   string             `gorm:"column:page_url;not null;uniqueIndex"`
	Data      []domainAds.AdItem `gorm:"column:data;type:text;serializer:json;not null"`
	Count     int                `gorm:"column:count;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;not null;index"`
	UpdatedAt time.Time          `gorm:"column:updated_at;not null"`
}

func (cacheEntryModel) TableName() string { return "ads" }

// --- Repository Implementation ---

type CacheGormRepository struct {
	db *gorm.DB
}

func NewCacheGormRepository(db *gorm.DB) *CacheGormRepository {
	return &CacheGormRepository{db: db}
}

func (r *CacheGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&cacheEntryModel{})
}

func (r *CacheGormRepository) FindByPageURL(ctx context.Context, pageURL string) (*domainAds.CacheEntry, error) {
	var m cacheEntryModel
	err := r.db.WithContext(ctx).
		Where("page_url = ?", pageURL).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainAds.ErrCacheNotFound
		}
		return nil, err
	}
	entry := fromCacheEntryModel(m)
	return &entry, nil
}

// Replace deletes whatever is stored for the page and inserts entry in one transaction.
func (r *CacheGormRepository) Replace(ctx context.Context, entry domainAds.CacheEntry) error {
	model := toCacheEntryModel(entry)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("page_url = ?", entry.PageURL).Delete(&cacheEntryModel{}).Error; err != nil {
			return fmt.Errorf("delete previous entry: %w", err)
		}
		if err := tx.Create(&model).Error; err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
		return nil
	})
}

func (r *CacheGormRepository) DeleteByPageURL(ctx context.Context, pageURL string) (int64, error) {
	res := r.db.WithContext(ctx).Where("page_url = ?", pageURL).Delete(&cacheEntryModel{})
	return res.RowsAffected, res.Error
}

func (r *CacheGormRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&cacheEntryModel{})
	return res.RowsAffected, res.Error
}

// List returns every entry, newest first.
func (r *CacheGormRepository) List(ctx context.Context) ([]domainAds.CacheEntry, error) {
	var models []cacheEntryModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domainAds.CacheEntry, len(models))
	for i, m := range models {
		res[i] = fromCacheEntryModel(m)
	}
	return res, nil
}

func (r *CacheGormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// --- Mappers ---

func toCacheEntryModel(e domainAds.CacheEntry) cacheEntryModel {
	data := e.Data
	if data == nil {
		data = []domainAds.AdItem{}
	}
	return cacheEntryModel{
		PageURL:   e.PageURL,
		Data:      data,
		Count:     len(data),
		CreatedAt: e.CreatedAt,
	}
}

func fromCacheEntryModel(m cacheEntryModel) domainAds.CacheEntry {
	data := m.Data
	if data == nil {
		data = []domainAds.AdItem{}
	}
	return domainAds.CacheEntry{
		PageURL:   m.PageURL,
		Data:      data,
		Count:     m.Count,
		CreatedAt: m.CreatedAt,
	}
}
