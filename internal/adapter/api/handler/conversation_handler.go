package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tradenest/internal/domain/entity"
	"tradenest/internal/usecase"
	"tradenest/pkg/response"
	"tradenest/pkg/utils"
)

type ConversationHandler struct {
	conversationUseCase *usecase.ConversationUseCase
}

func NewConversationHandler(conversationUseCase *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
	}
}

type relatedToRequest struct {
	Type  string `json:"type" validate:"required,oneof=product order service"`
	ID    string `json:"id" validate:"required"`
	Title string `json:"title"`
}

type createConversationRequest struct {
	RecipientID    string            `json:"recipient_id" validate:"required"`
	RelatedTo      *relatedToRequest `json:"related_to,omitempty"`
	InitialMessage string            `json:"initial_message"`
}

// Content may be empty when attachments are present; the usecase enforces
// the "no empty sends" rule so it stays testable in one place.
type sendMessageRequest struct {
	Content        string   `json:"content"`
	AttachmentURLs []string `json:"attachment_urls,omitempty" validate:"omitempty,dive,url"`
}

// CreateConversation opens (or reuses) a direct conversation with another user
func (h *ConversationHandler) CreateConversation(c echo.Context) error {
	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	input := usecase.CreateConversationInput{
		RecipientID:    req.RecipientID,
		InitialMessage: req.InitialMessage,
	}
	if req.RelatedTo != nil {
		input.RelatedTo = &entity.RelatedTo{
			Type:  req.RelatedTo.Type,
			ID:    req.RelatedTo.ID,
			Title: req.RelatedTo.Title,
		}
	}

	conversation, err := h.conversationUseCase.CreateConversation(c.Request().Context(), userID, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, conversation)
}

// ListConversations returns the authenticated user's conversations
func (h *ConversationHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c, 20)

	conversations, total, err := h.conversationUseCase.ListConversations(c.Request().Context(), userID, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, conversations, total, params.Limit, params.Offset)
}

// GetConversation returns a single conversation summary
func (h *ConversationHandler) GetConversation(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	conversation, err := h.conversationUseCase.GetConversation(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

// GetMessages returns the conversation thread, oldest first
func (h *ConversationHandler) GetMessages(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c, 50)

	messages, total, err := h.conversationUseCase.GetMessages(c.Request().Context(), userID, conversationID, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, messages, total, params.Limit, params.Offset)
}

// SendMessage appends a message to the conversation
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.conversationUseCase.SendMessage(c.Request().Context(), userID, usecase.SendMessageInput{
		ConversationID: conversationID,
		Content:        req.Content,
		AttachmentURLs: req.AttachmentURLs,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

// MarkMessageAsRead marks a single message as read for the authenticated user
func (h *ConversationHandler) MarkMessageAsRead(c echo.Context) error {
	conversationID := c.Param("id")
	messageID := c.Param("messageId")
	userID := c.Get("uid").(string)

	if err := h.conversationUseCase.MarkMessageAsRead(c.Request().Context(), userID, conversationID, messageID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
