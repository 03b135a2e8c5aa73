package rest

import (
	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	"github.com/AzielCF/az-adlib/domains/health"
)

type ScrapeResponse struct {
	Status string             `json:"status"`
	Count  int                `json:"count"`
	Data   []domainAds.AdItem `json:"data"`
	Source domainAds.Source   `json:"source"`
}

type ClearCacheResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	DeletedCount int64  `json:"deletedCount"`
}

type DataResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type HealthResponse struct {
	Status string        `json:"status"`
	Data   health.Report `json:"data"`
}
