package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/platewise/chefchat/chat"
)

// MessagingHandler serves the companion REST surface next to the live
// socket: conversation listing, paginated history, and out-of-band
// mark-read. It shares the gateway's store and hub so both surfaces see
// the same state.
type MessagingHandler struct {
	gateway *chat.Gateway
	store   chat.MessageStore
}

func NewMessagingHandler(gateway *chat.Gateway, store chat.MessageStore) *MessagingHandler {
	return &MessagingHandler{gateway: gateway, store: store}
}

func currentUserID(c *fiber.Ctx) uint {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := claims["user_id"].(float64)
	return uint(id)
}

func (h *MessagingHandler) GetConversations(c *fiber.Ctx) error {
	userID := currentUserID(c)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	conversations, err := h.store.ListConversations(c.Context(), userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch conversations"})
	}
	return c.JSON(conversations)
}

func (h *MessagingHandler) GetConversationMessages(c *fiber.Ctx) error {
	userID := currentUserID(c)
	conversationID := c.Params("conversationId")
	if _, err := chat.Counterpart(conversationID, userID); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not a participant of this conversation"})
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	// Stored newest-first for pagination; reversed so clients render
	// chronologically.
	messages, err := h.store.ListMessages(c.Context(), conversationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return c.JSON(messages)
}

func (h *MessagingHandler) MarkConversationRead(c *fiber.Ctx) error {
	userID := currentUserID(c)
	conversationID := c.Params("conversationId")

	updated, opErr := h.gateway.MarkRead(c.Context(), userID, conversationID)
	if opErr != nil {
		status := fiber.StatusInternalServerError
		if opErr.Code == chat.CodeValidationError {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{"error": opErr.Message})
	}
	return c.JSON(fiber.Map{"conversation_id": conversationID, "updated": updated})
}
