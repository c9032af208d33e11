package router

import (
	"github.com/labstack/echo/v4"

	"tradenest/internal/adapter/api/handler"
	"tradenest/internal/adapter/api/middleware"
)

// SetupConversationRouter wires all conversation and contact-share routes.
func SetupConversationRouter(e *echo.Echo, conversationHandler *handler.ConversationHandler, contactShareHandler *handler.ContactShareHandler, authMiddleware *middleware.AuthMiddleware) {
	conversationGroup := e.Group("/v1/conversations")
	conversationGroup.Use(authMiddleware.Authenticate)

	// Conversation management
	conversationGroup.POST("", conversationHandler.CreateConversation)
	conversationGroup.GET("", conversationHandler.ListConversations)
	conversationGroup.GET("/:id", conversationHandler.GetConversation)

	// Message thread
	conversationGroup.GET("/:id/messages", conversationHandler.GetMessages)
	conversationGroup.POST("/:id/messages", conversationHandler.SendMessage)
	conversationGroup.PUT("/:id/messages/:messageId/read", conversationHandler.MarkMessageAsRead)

	// Contact-share ledger
	conversationGroup.GET("/:id/contact-share", contactShareHandler.GetLedger)
	conversationGroup.POST("/:id/share-contact", contactShareHandler.ShareContact)

	// Accept/decline address a share record directly
	shareGroup := e.Group("/v1/contact-shares")
	shareGroup.Use(authMiddleware.Authenticate)
	shareGroup.POST("/:id/accept", contactShareHandler.AcceptShare)
	shareGroup.POST("/:id/decline", contactShareHandler.DeclineShare)
}
