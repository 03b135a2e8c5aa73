package rest

import (
	domainAnalysis "github.com/AzielCF/az-adlib/domains/analysis"
	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	"github.com/AzielCF/az-adlib/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Analysis struct {
	Service domainAnalysis.IAnalysisUsecase
}

func InitRestAnalysis(app fiber.Router, service domainAnalysis.IAnalysisUsecase) Analysis {
	rest := Analysis{Service: service}
	app.Post("/ai/analyze", rest.Analyze)

	return rest
}

func (handler *Analysis) Analyze(c *fiber.Ctx) error {
	var request domainAnalysis.AnalyzeRequest
	if err := c.BodyParser(&request); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("Invalid request body"))
	}

	result, err := handler.Service.Analyze(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(DataResponse{
		Status: utils.StatusSuccess,
		Data:   result,
	})
}
