package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgError "github.com/AzielCF/az-adlib/pkg/error"
	"github.com/AzielCF/az-adlib/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recoverFrom(t *testing.T, rec any) (int, utils.ResponseData) {
	t.Helper()
	app := fiber.New()
	app.Use(Recovery())
	app.Get("/", func(c *fiber.Ctx) error {
		panic(rec)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body utils.ResponseData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestRecovery_GenericError(t *testing.T) {
	status, body := recoverFrom(t, pkgError.NotFoundError("Ad not found"))

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, utils.StatusError, body.Status)
	assert.Equal(t, "NOT_FOUND_ERROR", body.Code)
	assert.Equal(t, "Ad not found", body.Message)
}

func TestRecovery_HidesUntypedPanics(t *testing.T) {
	for _, rec := range []any{
		errors.New("dial tcp 10.0.0.5:5432: connection refused"),
		"runtime: index out of range [3] with length 2",
	} {
		status, body := recoverFrom(t, rec)

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
		assert.Equal(t, "Internal server error", body.Message)
	}
}
