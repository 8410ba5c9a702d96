package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daechang/placetalk/internal/chat"
	"github.com/daechang/placetalk/internal/domain"
)

// ChatHandler exposes the chatroom messaging engine over HTTP.
type ChatHandler struct {
	service chat.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(service chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// List handles GET /api/chatrooms?chatid=. An unknown chatid filter returns
// an empty list, never 404, preserving the query-by-optional-id semantics.
func (h *ChatHandler) List(c echo.Context) error {
	rooms, err := h.service.GetChatrooms(c.Request().Context(), c.QueryParam("chatid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Create handles POST /api/chatrooms.
func (h *ChatHandler) Create(c echo.Context) error {
	var req CreateChatroomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	room, err := h.service.CreateChatroom(c.Request().Context(), domain.Chatroom{
		ChatID:       req.ChatID,
		OwnerEmail:   req.OwnerEmail,
		RoadAddress:  req.RoadAddress,
		JibunAddress: req.JibunAddress,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, room)
}

// Delete handles DELETE /api/chatrooms/:chatid and returns the removed room
// with its final message log.
func (h *ChatHandler) Delete(c echo.Context) error {
	room, err := h.service.DeleteChatroom(c.Request().Context(), c.Param("chatid"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, room)
}

// AddMessage handles POST /api/chatrooms/:chatid/messages. A rejected
// message is never partially applied: validation happens before the store
// append, and nothing is published unless the append succeeded.
func (h *ChatHandler) AddMessage(c echo.Context) error {
	var req AddMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.SenderEmail == "" {
		req.SenderEmail = SessionEmail(c)
	}

	msg, err := h.service.AddMessage(c.Request().Context(), c.Param("chatid"), domain.Message{
		SenderEmail: req.SenderEmail,
		Text:        req.Text,
		SendAt:      req.SendAt,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, msg)
}
