package controller

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"marketplace-management-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo"
)

const (
	defaultLimit  = 5
	defaultOffset = 0

	headerUserId = "X-User-Id"
)

type errorResponse struct {
	Reason string `json:"reason"`
}

// actingUser reads the authenticated caller's id from the X-User-Id
// header. Authentication itself happens upstream of this service.
func actingUser(c echo.Context) (uuid.UUID, error) {
	raw := c.Request().Header.Get(headerUserId)
	if raw == "" {
		return uuid.Nil, errors.New("missing " + headerUserId + " header")
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.New(headerUserId + " is not a valid uuid")
	}

	return id, nil
}

func respondUnidentified(c echo.Context, err error) error {
	if e := c.JSON(http.StatusUnauthorized, errorResponse{err.Error()}); e != nil {
		return e
	}

	return err
}

func respondServiceError(c echo.Context, err error) error {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	}

	if e := c.JSON(status, errorResponse{err.Error()}); e != nil {
		return e
	}

	return err
}

func getAllErrorMessages(err error) string {
	var builder strings.Builder
	for _, fe := range err.(validator.ValidationErrors) {
		message := fmt.Sprintf("'%s': %s\n", fe.Field(), getMessage(fe))
		builder.WriteString(message)
	}

	return builder.String()
}

func getMessage(fe validator.FieldError) string {
	s, i := "", int32(0)
	if fe.Type() == reflect.TypeOf(s) {
		return getMessageForString(fe)
	}

	if fe.Type() == reflect.TypeOf(i) {
		return getMessageForInt(fe)
	}

	if fe.Type() == reflect.TypeOf(0) {
		return getMessageForInt(fe)
	}

	if fe.Type() == reflect.TypeOf(float64(0)) {
		return getMessageForInt(fe)
	}

	return "Unknown error (2)"
}

func getMessageForInt(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "should be less or equal than " + fe.Param()
	case "gte", "min":
		return "should be greater or equal than " + fe.Param()
	case "gt":
		return "should be greater than " + fe.Param()
	}

	return "incorrect value passed"
}

func getMessageForString(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "lte", "max":
		return "length should be less or equal than " + fe.Param()
	case "gte", "min":
		return "length should be greater or equal than " + fe.Param()
	case "oneof":
		return "should have value in: " + fe.Param()
	case "email":
		return "should be a valid email address"
	case "uuid":
		return "should be a valid uuid"
	}

	return "incorrect value passed"
}
