package rest

import (
	"fmt"
	"strings"

	domainAds "github.com/AzielCF/az-adlib/domains/ads"
	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	"github.com/AzielCF/az-adlib/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Ads struct {
	Service domainAds.IAdsUsecase
}

func InitRestAds(app fiber.Router, service domainAds.IAdsUsecase) Ads {
	rest := Ads{Service: service}
	app.Post("/scrape", rest.Scrape)
	app.Delete("/cache", rest.ClearCache)
	app.Get("/ads/:id", rest.GetAd)

	return rest
}

func (handler *Ads) Scrape(c *fiber.Ctx) error {
	var request domainAds.ScrapeRequest
	if err := c.BodyParser(&request); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("Invalid request body"))
	}

	result, err := handler.Service.GetAds(c.UserContext(), request)
	utils.PanicIfNeeded(err)
	if result.Items == nil {
		result.Items = []domainAds.AdItem{}
	}

	return c.JSON(ScrapeResponse{
		Status: utils.StatusSuccess,
		Count:  result.Count,
		Data:   result.Items,
		Source: result.Source,
	})
}

func (handler *Ads) ClearCache(c *fiber.Ctx) error {
	var request domainAds.ClearCacheRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&request); err != nil {
			utils.PanicIfNeeded(pkgError.ValidationError("Invalid request body"))
		}
	}

	deleted, err := handler.Service.ClearCache(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(ClearCacheResponse{
		Status:       utils.StatusSuccess,
		Message:      fmt.Sprintf("Cache cleared for %s", strings.TrimSpace(request.PageURL)),
		DeletedCount: deleted,
	})
}

func (handler *Ads) GetAd(c *fiber.Ctx) error {
	item, err := handler.Service.FindByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(DataResponse{
		Status: utils.StatusSuccess,
		Data:   item,
	})
}
