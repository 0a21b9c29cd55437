package controller

import (
	"net/http"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type jobRoutesHandler struct {
	jobService service.Job
	validate   *validator.Validate
}

func newJobRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *jobRoutesHandler {
	h := &jobRoutesHandler{jobService: services.Job, validate: v}
	outer.POST("/jobs", h.PostJob)
	outer.GET("/jobs", h.GetJobBoard)
	outer.PUT("/jobs/:jobId/complete", h.CompleteJob)

	return h
}

type postJobInput struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description string  `json:"description" validate:"required,max=500"`
	Budget      float64 `json:"budget" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required,max=100"`
	Location    string  `json:"location" validate:"max=200"`
}

// /jobs
func (h *jobRoutesHandler) PostJob(c echo.Context) error {
	userId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	var input postJobInput
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

	model := &entity.CreateJobInput{
		UserId: userId.String(), Title: input.Title, Description: input.Description,
		Budget: input.Budget, Category: input.Category, Location: input.Location,
	}

	job, err := h.jobService.CreateJob(c.Request().Context(), model)
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, job); e != nil {
		return e
	}

	return nil
}

type getJobBoardInput struct {
	Limit  int32 `query:"limit" validate:"gte=0,lte=50"`
	Offset int32 `query:"offset" validate:"gte=0"`
}

// /jobs
func (h *jobRoutesHandler) GetJobBoard(c echo.Context) error {
	input := getJobBoardInput{Limit: defaultLimit, Offset: defaultOffset}
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
	board, err := h.jobService.GetJobBoard(c.Request().Context(), pg)
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, board); e != nil {
		return e
	}

	return nil
}

// /jobs/:jobId/complete
func (h *jobRoutesHandler) CompleteJob(c echo.Context) error {
	userId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	job, err := h.jobService.CompleteJob(c.Request().Context(), c.Param("jobId"), userId.String())
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, job); e != nil {
		return e
	}

	return nil
}
