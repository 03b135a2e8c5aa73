package rest

import (
	"github.com/AzielCF/az-adlib/core/config"
	"github.com/AzielCF/az-adlib/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const rootMessage = "Facebook Ads Scraper API is running"

type App struct{}

// InitRestApp registers the liveness route on the un-prefixed router.
func InitRestApp(app fiber.Router) App {
	rest := App{}
	app.Get("/", rest.Index)
	app.Get("/version", rest.GetVersion)
	return rest
}

func (handler *App) Index(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  utils.StatusSuccess,
		Message: rootMessage,
	})
}

func (handler *App) GetVersion(c *fiber.Ctx) error {
	version := "dev"
	if config.Global != nil {
		version = config.Global.App.Version
	}
	return c.JSON(fiber.Map{
		"status":  utils.StatusSuccess,
		"version": version,
	})
}
