package controller

import (
	"net/http"

	"marketplace-management-api/internal/entity"
	"marketplace-management-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type messageRoutesHandler struct {
	messageService service.Message
	validate       *validator.Validate
}

func newMessageRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *messageRoutesHandler {
	h := &messageRoutesHandler{messageService: services.Message, validate: v}
	outer.POST("/messages", h.PostMessage)
	outer.PUT("/messages/:messageId/read", h.MarkRead)
	outer.GET("/chats", h.GetChatThreads)

	return h
}

type postMessageInput struct {
	ReceiverId string `json:"receiverId" validate:"required,uuid"`
	Content    string `json:"content" validate:"required,max=2000"`
}

// /messages
func (h *messageRoutesHandler) PostMessage(c echo.Context) error {
	userId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	var input postMessageInput
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

	model := &entity.SendMessageInput{
		SenderId: userId.String(), ReceiverId: input.ReceiverId, Content: input.Content,
	}

	message, err := h.messageService.SendMessage(c.Request().Context(), model)
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, message); e != nil {
		return e
	}

	return nil
}

// /messages/:messageId/read
func (h *messageRoutesHandler) MarkRead(c echo.Context) error {
	userId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	message, err := h.messageService.MarkMessageRead(c.Request().Context(), c.Param("messageId"), userId.String())
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, message); e != nil {
		return e
	}

	return nil
}

// /chats
func (h *messageRoutesHandler) GetChatThreads(c echo.Context) error {
	userId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	threads, err := h.messageService.GetChatThreads(c.Request().Context(), userId.String())
	if err != nil {
		return respondServiceError(c, err)
	}

	if e := c.JSON(http.StatusOK, threads); e != nil {
		return e
	}

	return nil
}
