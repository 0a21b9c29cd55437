package controller

import (
	"net/http"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type profileRoutesHandler struct {
	profileService service.Profile
	validate       *validator.Validate
}

func newProfileRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *profileRoutesHandler {
	h := &profileRoutesHandler{profileService: services.Profile, validate: v}
	outer.POST("/users", h.PostUser)
	outer.PUT("/users/onboarding/complete", h.CompleteOnboarding)
	outer.GET("/users/:userId", h.GetUser)

	outer.PUT("/business/profile", h.PutBusinessProfile)
	outer.GET("/businesses", h.GetBusinesses)
	outer.GET("/businesses/:businessId", h.GetBusiness)

	return h
}

type postUserInput struct {
	Email string `json:"email" validate:"required,email,max=100"`
	Name  string `json:"name" validate:"required,max=100"`
	Role  string `json:"role" validate:"required,oneof=requester provider"`
}

// /users
func (h *profileRoutesHandler) PostUser(c echo.Context) error {
	var input postUserInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	model := &entity.RegisterUserInput{Email: input.Email, Name: input.Name, Role: input.Role}
	user, err := h.profileService.RegisterUser(c.Request().Context(), model)
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, user); e != nil {
		return e
	}

	return nil
}

// /users/onboarding/complete
func (h *profileRoutesHandler) CompleteOnboarding(c echo.Context) error {
	userId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	user, err := h.profileService.CompleteUserOnboarding(c.Request().Context(), userId.String())
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, user); e != nil {
		return e
	}

	return nil
}

// /users/:userId
func (h *profileRoutesHandler) GetUser(c echo.Context) error {
	user, err := h.profileService.GetUserById(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, user); e != nil {
		return e
	}

	return nil
}

type putBusinessProfileInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Address     string `json:"address" validate:"max=200"`
	Hours       string `json:"hours" validate:"max=100"`
	ImageUrl    string `json:"imageUrl" validate:"max=500"`
}

// /business/profile
func (h *profileRoutesHandler) PutBusinessProfile(c echo.Context) error {
	userId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	var input putBusinessProfileInput
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	model := &entity.UpsertBusinessInput{
		UserId: userId.String(), Name: input.Name, Category: input.Category,
		Description: input.Description, Address: input.Address, Hours: input.Hours,
		ImageUrl: input.ImageUrl,
	}

	business, err := h.profileService.UpsertBusinessProfile(c.Request().Context(), model)
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, business); e != nil {
		return e
	}

	return nil
}

type getBusinessesInput struct {
	Category string `query:"category" validate:"max=100"`
	Limit    int32  `query:"limit" validate:"gte=0,lte=50"`
	Offset   int32  `query:"offset" validate:"gte=0"`
}

// /businesses
func (h *profileRoutesHandler) GetBusinesses(c echo.Context) error {
	input := getBusinessesInput{Limit: defaultLimit, Offset: defaultOffset}
	if err := c.Bind(&input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"Input data is not formed correctly"}); e != nil {
			return e
		}

		return err
	}

	if err := h.validate.Struct(input); err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{getAllErrorMessages(err)}); e != nil {
			return e
		}

		return err
	}

	pg := entity.NewPaginationInput(int(input.Limit), int(input.Offset))
	businesses, err := h.profileService.GetBusinesses(c.Request().Context(), input.Category, pg)
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, businesses); e != nil {
		return e
	}

	return nil
}

// /businesses/:businessId
func (h *profileRoutesHandler) GetBusiness(c echo.Context) error {
	business, err := h.profileService.GetBusinessById(c.Request().Context(), c.Param("businessId"))
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, business); e != nil {
		return e
	}

	return nil
}
