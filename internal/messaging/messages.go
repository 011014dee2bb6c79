package messaging

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/middleware"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// participantChat checks the caller is one of the chat's parties.
func participantChat(c echo.Context, chat db.Chat, err error) (db.Chat, error) {
	if err != nil {
		return db.Chat{}, err
	}
	if !chat.Participant(middleware.UserID(c)) {
		return db.Chat{}, apperr.Forbidden("not a participant in this chat")
	}
	return chat, nil
}

// ChatForRequest returns the chat opened when the request's offer was accepted
func (h *Handler) ChatForRequest(c echo.Context) error {
	chat, err := h.svc.GetChatByRequest(c.Param("id"))
	chat, err = participantChat(c, chat, err)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"chat": chat})
}

// ListChats returns the caller's chats, most recent activity first
func (h *Handler) ListChats(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"chats": h.svc.Inbox(middleware.UserID(c))})
}

// ListMessages returns a chat thread, oldest first
func (h *Handler) ListMessages(c echo.Context) error {
	chat, err := h.svc.GetChatByID(c.Param("id"))
	chat, err = participantChat(c, chat, err)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"chat": chat, "messages": h.svc.GetMessages(chat.ID)})
}

// SendMessage - buyer or seller sends a message in a chat
func (h *Handler) SendMessage(c echo.Context) error {
	var body struct {
		Type db.MessageType `json:"type"`
		Content
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
	}
	if body.Type == "" {
		body.Type = db.MessageText
	}

	msg, err := h.svc.SendMessage(c.Request().Context(), c.Param("id"), middleware.UserID(c), body.Type, body.Content)
	if err != nil {
		return middleware.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": msg})
}
