package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"restaurant-pos/internal/entity"
	"restaurant-pos/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// IdempotencyHeader lets clients retry create, add-order and pay safely.
const IdempotencyHeader = "Idempotency-Key"

// respond writes a service response with its own status code.
func respond(c echo.Context, resp *entity.ServiceResponse) error {
	return c.JSON(resp.StatusCode, resp)
}

// respondError renders service errors as {status_code, message}. Anything
// else is hidden behind a generic 500.
func respondError(c echo.Context, err error) error {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		return c.JSON(svcErr.Code, entity.ServiceResponse{StatusCode: svcErr.Code, Message: svcErr.Message})
	}
	logger.Error().Err(err).Msgf("Unhandled error on %s %s", c.Request().Method, c.Path())
	return c.JSON(http.StatusInternalServerError, entity.ServiceResponse{
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error.",
	})
}

func invalidPayload(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, entity.ServiceResponse{
		StatusCode: http.StatusBadRequest,
		Message:    "Invalid request payload",
	})
}
