package middleware

import (
	"errors"

	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	"github.com/AzielCF/az-adlib/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const internalErrorMessage = "Internal server error"

func Recovery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			// Anything that is not a GenericError stays in the log only.
			var generic pkgError.GenericError = pkgError.InternalServerError(internalErrorMessage)
			if err, ok := rec.(error); ok {
				var typed pkgError.GenericError
				if errors.As(err, &typed) {
					generic = typed
				}
			}
			httpStatus := generic.StatusCode()
			res := utils.ResponseData{
				Status:  utils.StatusError,
				Code:    generic.ErrCode(),
				Message: generic.Error(),
			}

			entry := logrus.WithFields(logrus.Fields{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"status": httpStatus,
			})
			if httpStatus >= fiber.StatusInternalServerError {
				entry.Errorf("[REST] Request failed: %v", rec)
			} else {
				entry.Debugf("[REST] Request rejected: %v", rec)
			}

			_ = ctx.Status(httpStatus).JSON(res)
		}()

		return ctx.Next()
	}
}
