package validations

import (
	"context"
	"strings"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	domainAnalysis "github.com/AzielCF/az-adlib/domains/analysis"
	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	maxPageURLLength = 2048
	maxContextField  = 2000
)

func validatePageURL(ctx context.Context, pageURL string) error {
	err := validation.ValidateWithContext(ctx, strings.TrimSpace(pageURL),
		validation.Required.Error("Page URL is required"),
		validation.Length(0, maxPageURLLength).Error("Page URL is too long"),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateScrape(ctx context.Context, request domainAds.ScrapeRequest) error {
	return validatePageURL(ctx, request.PageURL)
}

func ValidateClearCache(ctx context.Context, request domainAds.ClearCacheRequest) error {
	return validatePageURL(ctx, request.PageURL)
}

func ValidateAdID(ctx context.Context, id string) error {
	err := validation.ValidateWithContext(ctx, strings.TrimSpace(id),
		validation.Required.Error("Ad ID is required"),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateAnalyze(ctx context.Context, request domainAnalysis.AnalyzeRequest) error {
	if err := ValidateAdID(ctx, request.AdID); err != nil {
		return err
	}

	err := validation.ValidateStructWithContext(ctx, &request.BusinessContext,
		validation.Field(&request.BusinessContext.BusinessName, validation.Length(0, 200)),
		validation.Field(&request.BusinessContext.Industry, validation.Length(0, 200)),
		validation.Field(&request.BusinessContext.TargetAudience, validation.Length(0, maxContextField)),
		validation.Field(&request.BusinessContext.BusinessDescription, validation.Length(0, maxContextField)),
		validation.Field(&request.BusinessContext.Tone, validation.Length(0, 200)),
		validation.Field(&request.BusinessContext.UniqueSellingPoints, validation.Length(0, 50)),
		validation.Field(&request.BusinessContext.Products, validation.Length(0, 50)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
