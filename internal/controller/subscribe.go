package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"marketplace-management-api/internal/dispatcher"
	"marketplace-management-api/internal/entity"

	"github.com/labstack/echo"
)

type subscribeRoutesHandler struct {
	dispatcher *dispatcher.Dispatcher
}

func newSubscribeRoutesHandler(outer *echo.Group, d *dispatcher.Dispatcher) *subscribeRoutesHandler {
	h := &subscribeRoutesHandler{dispatcher: d}
	outer.GET("/feed/subscribe", h.Subscribe)

	return h
}

// sseSender frames view deltas as server-sent events. The delta seq
// doubles as the event id, so reconnecting clients resume with
// Last-Event-ID.
type sseSender struct {
	response *echo.Response
}

func (s *sseSender) Send(delta entity.ViewDelta) error {
	payload, err := json.Marshal(delta)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.response, "id: %d\nevent: %s\ndata: %s\n\n", delta.Seq, delta.Kind, payload); err != nil {
		return err
	}
	s.response.Flush()

	return nil
}

// /feed/subscribe
func (h *subscribeRoutesHandler) Subscribe(c echo.Context) error {
	viewerId, err := actingUser(c)
	if err != nil {
		return respondUnidentified(c, err)
	}

	afterSeq, err := resumePoint(c)
	if err != nil {
		if e := c.JSON(http.StatusBadRequest, errorResponse{"after must be a non-negative integer"}); e != nil {
			return e
		}

		return err
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set("Cache-Control", "no-cache")
	response.Header().Set("Connection", "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	session, err := h.dispatcher.Attach(c.Request().Context(), viewerId, afterSeq, &sseSender{response: response})
	if err != nil {
		return err
	}

	// the session goroutine owns the connection until the client leaves
	// or the dispatcher shuts down
	<-session.Done()

	return nil
}

func resumePoint(c echo.Context) (uint64, error) {
	raw := c.Request().Header.Get("Last-Event-ID")
	if raw == "" {
		raw = c.QueryParam("after")
	}
	if raw == "" {
		return 0, nil
	}

	return strconv.ParseUint(raw, 10, 64)
}
