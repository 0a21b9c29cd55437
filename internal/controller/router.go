package controller

import (
	"marketplace-management-api/internal/dispatcher"
	"marketplace-management-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

func SetupRoutesHandlers(handler *echo.Echo, services *service.Services, d *dispatcher.Dispatcher) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newProfileRoutesHandler(api, services, validate)
	newJobRoutesHandler(api, services, validate)
	newBidRoutesHandler(api, services, validate)
	newMessageRoutesHandler(api, services, validate)
	newSubscribeRoutesHandler(api, d)
}
