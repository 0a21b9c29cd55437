package controller

import (
	"net/http"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type bidRoutesHandler struct {
	bidService service.Bid
	validate   *validator.Validate
}

func newBidRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *bidRoutesHandler {
	h := &bidRoutesHandler{bidService: services.Bid, validate: v}
	outer.POST("/jobs/:jobId/bids", h.PostBid)
	outer.GET("/jobs/:jobId/bids", h.GetJobBids)
	outer.PUT("/bids/:bidId/decision", h.SubmitDecision)

	return h
}

type postBidInput struct {
	BusinessId string  `json:"businessId" validate:"required,uuid"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Proposal   string  `json:"proposal" validate:"required,max=500"`
}

// /jobs/:jobId/bids
func (h *bidRoutesHandler) PostBid(c echo.Context) error {
	userId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	var input postBidInput
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

	model := &entity.SubmitBidInput{
		JobId: c.Param("jobId"), BusinessId: input.BusinessId,
		Amount: input.Amount, Proposal: input.Proposal,
	}

	bid, err := h.bidService.SubmitBid(c.Request().Context(), model, userId.String())
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, bid); e != nil {
		return e
	}

	return nil
}

// /jobs/:jobId/bids
func (h *bidRoutesHandler) GetJobBids(c echo.Context) error {
	bids, err := h.bidService.GetJobBids(c.Request().Context(), c.Param("jobId"))
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, bids); e != nil {
		return e
	}

	return nil
}

type submitDecisionInput struct {
	Decision string `json:"decision" validate:"required,oneof=accept reject"`
}

// /bids/:bidId/decision
func (h *bidRoutesHandler) SubmitDecision(c echo.Context) error {
	userId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	var input submitDecisionInput
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

	bid, err := h.bidService.DecideBid(c.Request().Context(), c.Param("bidId"), input.Decision, userId.String())
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, bid); e != nil {
		return e
	}

	return nil
}
