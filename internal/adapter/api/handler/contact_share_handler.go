package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tradenest/internal/usecase"
	"tradenest/pkg/response"
)

type ContactShareHandler struct {
	contactShareUseCase *usecase.ContactShareUseCase
}

func NewContactShareHandler(contactShareUseCase *usecase.ContactShareUseCase) *ContactShareHandler {
	return &ContactShareHandler{
		contactShareUseCase: contactShareUseCase,
	}
}

// Phone, email and message are checked by the usecase against the configured
// contact-share policy; only the structural shape is validated here.
type shareContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// GetLedger returns the caller's contact-share slots, derived state and the
// gating-rule verdict for the conversation
func (h *ContactShareHandler) GetLedger(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	ledger, err := h.contactShareUseCase.GetLedger(c.Request().Context(), userID, conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, ledger)
}

// ShareContact creates a pending contact-share offer in the conversation
func (h *ContactShareHandler) ShareContact(c echo.Context) error {
	conversationID := c.Param("id")
	userID := c.Get("uid").(string)

	var req shareContactRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	record, err := h.contactShareUseCase.Offer(c.Request().Context(), userID, usecase.OfferContactInput{
		ConversationID: conversationID,
		Name:           req.Name,
		Phone:          req.Phone,
		Email:          req.Email,
		Message:        req.Message,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, record)
}

// AcceptShare accepts an incoming contact-share offer
func (h *ContactShareHandler) AcceptShare(c echo.Context) error {
	shareID := c.Param("id")
	userID := c.Get("uid").(string)

	record, err := h.contactShareUseCase.Accept(c.Request().Context(), userID, shareID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, record)
}

// DeclineShare declines an incoming contact-share offer
func (h *ContactShareHandler) DeclineShare(c echo.Context) error {
	shareID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.contactShareUseCase.Decline(c.Request().Context(), userID, shareID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
