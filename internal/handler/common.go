// Package handler exposes the booking core over HTTP. Handlers parse and
// validate input, call a service, and turn apperror kinds into status
// codes in one place (respondError).
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/shop1111/flight-booking/internal/apperror"
	"github.com/shop1111/flight-booking/internal/middleware"
)

// Validator adapts go-playground/validator to echo.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator { return &Validator{v: validator.New(validator.WithRequiredStructEnabled())} }

func (cv *Validator) Validate(i interface{}) error { return cv.v.Struct(i) }

// bind decodes the body into dst and validates it.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperror.ErrInvalidInput.WithMessage("invalid request body").Wrap(err)
	}
	if err := c.Validate(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperror.ErrInvalidInput.WithMessage("field %s failed on %s", fe.Field(), fe.Tag()).Wrap(err)
		}
		return apperror.ErrInvalidInput.Wrap(err)
	}
	return nil
}

// currentUser returns the id stored by the JWT middleware.
func currentUser(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.ErrInvalidInput.WithMessage("invalid %s", name)
	}
	return id, nil
}

func statusOf(k apperror.Kind) int {
	switch k {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindForbidden:
		return http.StatusForbidden
	case apperror.KindInvalidState:
		return http.StatusUnprocessableEntity
	case apperror.KindInsufficientResource:
		return http.StatusPaymentRequired
	case apperror.KindTransient:
		return http.StatusServiceUnavailable
	case apperror.KindInvalid:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON. Internal and transient failures are
// logged; their details are not sent to the client.
func respondError(c echo.Context, log logrus.FieldLogger, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return c.JSON(he.Code, echo.Map{"error": http.StatusText(he.Code), "message": he.Message})
	}

	var ae *apperror.Error
	if !errors.As(err, &ae) {
		log.WithError(err).WithField("request_id", requestID(c)).Error("internal error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "INTERNAL", "message": "internal error"})
	}
	status := statusOf(ae.Kind)
	if ae.Kind == apperror.KindTransient {
		log.WithError(err).WithField("request_id", requestID(c)).Warn("transient store failure")
		c.Response().Header().Set("Retry-After", "1")
	}
	return c.JSON(status, echo.Map{"error": ae.Code, "message": ae.Message})
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func loggerOr(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logrus.StandardLogger()
	}
	return log
}
