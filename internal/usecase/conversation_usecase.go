package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"tradenest/internal/domain/entity"
	"tradenest/internal/domain/repository"
	"tradenest/internal/infrastructure/ratelimit"
	ws "tradenest/internal/infrastructure/websocket"
	"tradenest/pkg/errors"
)

// ConversationUseCase owns the lifecycle of a conversation view: loading the
// thread, sending messages, read tracking and the contact-share gating check.
type ConversationUseCase struct {
	conversationRepo repository.ConversationRepository
	contactShareRepo repository.ContactShareRepository
	userRepo         repository.UserRepository
	wsManager        *ws.Manager
	rateLimiter      *ratelimit.RateLimiter
	policy           ContactSharePolicy
}

func NewConversationUseCase(
	conversationRepo repository.ConversationRepository,
	contactShareRepo repository.ContactShareRepository,
	userRepo repository.UserRepository,
	wsManager *ws.Manager,
	policy ContactSharePolicy,
) *ConversationUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ConversationUseCase{
		conversationRepo: conversationRepo,
		contactShareRepo: contactShareRepo,
		userRepo:         userRepo,
		wsManager:        wsManager,
		rateLimiter:      rateLimiter,
		policy:           policy,
	}
}

type CreateConversationInput struct {
	RecipientID    string
	RelatedTo      *entity.RelatedTo
	InitialMessage string
}

type SendMessageInput struct {
	ConversationID string
	Content        string
	AttachmentURLs []string
}

type ConversationResponse struct {
	*entity.Conversation
	OtherUser *entity.User `json:"other_user,omitempty"`
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.User `json:"sender,omitempty"`
}

func (uc *ConversationUseCase) CreateConversation(ctx context.Context, userID string, input CreateConversationInput) (*ConversationResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_conversation")
	if !allowed {
		log.Printf("CreateConversation Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before starting another conversation", waitTime)
	}

	if userID == input.RecipientID {
		log.Printf("CreateConversation Error: User %s attempted to start a conversation with themselves", userID)
		return nil, errors.BadRequest("You cannot start a conversation with yourself", nil)
	}

	recipient, err := uc.userRepo.GetByID(ctx, input.RecipientID)
	if err != nil {
		log.Printf("CreateConversation Error: Recipient %s not found: %v", input.RecipientID, err)
		return nil, errors.NotFound("Recipient", err)
	}

	var conversation *entity.Conversation

	existing, err := uc.findExistingConversation(ctx, userID, input.RecipientID)
	if err == nil && existing != nil {
		conversation = existing
		if input.RelatedTo != nil {
			// Always point an existing thread at the latest listing discussed.
			conversation.RelatedTo = input.RelatedTo
			if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
				log.Printf("CreateConversation Warning: Failed to update conversation %s with related reference: %v", conversation.ID, err)
			}
		}
	} else {
		if err != nil && !errors.Is(err, "NOT_FOUND") {
			log.Printf("CreateConversation Error: Failed to search for existing conversation: %v", err)
			return nil, err
		}

		conversation = &entity.Conversation{
			Participants:  []string{userID, input.RecipientID},
			BuyerID:       userID,
			SellerID:      input.RecipientID,
			RelatedTo:     input.RelatedTo,
			UnreadCount:   make(map[string]int),
			LastMessageAt: time.Now(),
		}

		if err := uc.conversationRepo.Create(ctx, conversation); err != nil {
			log.Printf("CreateConversation Error: Failed to create conversation: %v", err)
			return nil, err
		}
	}

	if input.InitialMessage != "" {
		if _, err := uc.SendMessage(ctx, userID, SendMessageInput{
			ConversationID: conversation.ID,
			Content:        input.InitialMessage,
		}); err != nil {
			log.Printf("CreateConversation Error: Failed to send initial message for conversation %s: %v", conversation.ID, err)
			return nil, err
		}
		conversation, err = uc.conversationRepo.GetByID(ctx, conversation.ID)
		if err != nil {
			return nil, err
		}
	}

	return &ConversationResponse{
		Conversation: conversation,
		OtherUser:    recipient,
	}, nil
}

func (uc *ConversationUseCase) ListConversations(ctx context.Context, userID string, limit, offset int) ([]*ConversationResponse, int64, error) {
	conversations, total, err := uc.conversationRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		log.Printf("ListConversations Error: Failed to list conversations for user %s: %v", userID, err)
		return nil, 0, err
	}

	var responses []*ConversationResponse
	for _, conversation := range conversations {
		resp := &ConversationResponse{Conversation: conversation}

		otherID := conversation.OtherParticipant(userID)
		if otherID != "" {
			otherUser, err := uc.userRepo.GetByID(ctx, otherID)
			if err == nil {
				resp.OtherUser = otherUser
			} else {
				log.Printf("ListConversations Warning: Other user %s not found for conversation %s: %v", otherID, conversation.ID, err)
			}
		}

		responses = append(responses, resp)
	}

	return responses, total, nil
}

func (uc *ConversationUseCase) GetConversation(ctx context.Context, userID, conversationID string) (*ConversationResponse, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		log.Printf("GetConversation Error: Conversation %s not found: %v", conversationID, err)
		return nil, err
	}

	if !conversation.HasParticipant(userID) {
		log.Printf("GetConversation Error: User %s is not a participant in conversation %s", userID, conversationID)
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	resp := &ConversationResponse{Conversation: conversation}

	otherID := conversation.OtherParticipant(userID)
	if otherID != "" {
		otherUser, err := uc.userRepo.GetByID(ctx, otherID)
		if err == nil {
			resp.OtherUser = otherUser
		} else {
			log.Printf("GetConversation Warning: Other user %s not found for conversation %s: %v", otherID, conversationID, err)
		}
	}

	return resp, nil
}

func (uc *ConversationUseCase) GetMessages(ctx context.Context, userID, conversationID string, limit, offset int) ([]*MessageResponse, int64, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		log.Printf("GetMessages Error: Conversation %s not found: %v", conversationID, err)
		return nil, 0, err
	}

	if !conversation.HasParticipant(userID) {
		log.Printf("GetMessages Error: User %s is not a participant in conversation %s", userID, conversationID)
		return nil, 0, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	messages, total, err := uc.conversationRepo.GetMessagesByConversation(ctx, conversationID, limit, offset)
	if err != nil {
		log.Printf("GetMessages Error: Failed to get messages for conversation %s: %v", conversationID, err)
		return nil, 0, err
	}

	senders := make(map[string]*entity.User)
	var responses []*MessageResponse
	for _, message := range messages {
		resp := &MessageResponse{Message: message}

		sender, ok := senders[message.SenderID]
		if !ok {
			sender, err = uc.userRepo.GetByID(ctx, message.SenderID)
			if err != nil {
				log.Printf("GetMessages Warning: Sender %s not found for message %s: %v", message.SenderID, message.ID, err)
			}
			senders[message.SenderID] = sender
		}
		resp.Sender = sender

		responses = append(responses, resp)
	}

	return responses, total, nil
}

// SendMessage appends a message to the thread. Empty sends (no content after
// trimming, no attachments) are rejected before any repository call. Failures
// propagate to the caller; nothing is inserted optimistically, so there is
// nothing to roll back.
func (uc *ConversationUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*MessageResponse, error) {
	if strings.TrimSpace(input.Content) == "" && len(input.AttachmentURLs) == 0 {
		return nil, errors.Validation("content", "message content or attachments required")
	}

	allowed, waitTime := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		log.Printf("SendMessage Error: Conversation %s not found: %v", input.ConversationID, err)
		return nil, err
	}

	if !conversation.HasParticipant(userID) {
		log.Printf("SendMessage Error: User %s is not a participant in conversation %s", userID, input.ConversationID)
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Printf("SendMessage Error: Sender %s not found: %v", userID, err)
		return nil, errors.NotFound("Sender", err)
	}

	message := &entity.Message{
		ConversationID: input.ConversationID,
		SenderID:       userID,
		Content:        input.Content,
		AttachmentURLs: input.AttachmentURLs,
		IsRead:         false,
		CreatedAt:      time.Now(),
	}

	if err := uc.conversationRepo.CreateMessage(ctx, message); err != nil {
		log.Printf("SendMessage Error: Failed to create message for conversation %s: %v", input.ConversationID, err)
		return nil, err
	}

	conversation.LastMessage = input.Content
	conversation.LastMessageAt = message.CreatedAt
	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}
	if otherID := conversation.OtherParticipant(userID); otherID != "" {
		conversation.UnreadCount[otherID]++
	}

	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		log.Printf("SendMessage Error: Failed to update conversation %s with last message: %v", conversation.ID, err)
		return nil, err
	}

	notification := map[string]interface{}{
		"type":            "new_message",
		"conversation_id": input.ConversationID,
		"message":         message,
		"sender":          sender,
		"last_message_at": message.CreatedAt.Format(time.RFC3339),
	}
	notificationJSON, _ := json.Marshal(notification)
	uc.wsManager.SendToUser(conversation.OtherParticipant(userID), notificationJSON)

	return &MessageResponse{
		Message: message,
		Sender:  sender,
	}, nil
}

// MarkMessageAsRead flips a single message's read flag and decrements the
// caller's unread count by exactly one, floored at zero. The flag only moves
// false -> true; repeating the call is a no-op for both the flag and the
// counter. The count is never recomputed from the message list.
func (uc *ConversationUseCase) MarkMessageAsRead(ctx context.Context, userID, conversationID, messageID string) error {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		log.Printf("MarkMessageAsRead Error: Conversation %s not found: %v", conversationID, err)
		return err
	}

	if !conversation.HasParticipant(userID) {
		log.Printf("MarkMessageAsRead Error: User %s is not a participant in conversation %s", userID, conversationID)
		return errors.Forbidden("User is not a participant in this conversation", nil)
	}

	message, err := uc.conversationRepo.GetMessageByID(ctx, conversationID, messageID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			// Stale id from an out-of-date client; nothing to do.
			log.Printf("MarkMessageAsRead: Message %s not found in conversation %s", messageID, conversationID)
			return nil
		}
		return err
	}

	if message.SenderID == userID || message.IsRead {
		return nil
	}

	message.IsRead = true
	if err := uc.conversationRepo.UpdateMessage(ctx, conversationID, message); err != nil {
		log.Printf("MarkMessageAsRead Error: Failed to update message %s: %v", messageID, err)
		return err
	}

	if conversation.UnreadCount == nil {
		conversation.UnreadCount = make(map[string]int)
	}
	if conversation.UnreadCount[userID] > 0 {
		conversation.UnreadCount[userID]--
	}
	if err := uc.conversationRepo.Update(ctx, conversation); err != nil {
		log.Printf("MarkMessageAsRead Error: Failed to update conversation %s unread count: %v", conversationID, err)
		return err
	}

	notification := map[string]interface{}{
		"type":            "message_read",
		"conversation_id": conversationID,
		"message_id":      messageID,
		"reader_id":       userID,
	}
	notificationJSON, _ := json.Marshal(notification)
	uc.wsManager.SendToUser(message.SenderID, notificationJSON)

	return nil
}

// CanOfferContact evaluates the contact-share gating rule for userID. It is
// a pure read and must be re-checked after every send/receive and after
// every ledger transition.
func (uc *ConversationUseCase) CanOfferContact(ctx context.Context, userID, conversationID string) (bool, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return false, err
	}

	if !conversation.HasParticipant(userID) {
		return false, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	records, err := uc.contactShareRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return false, err
	}

	count, err := uc.conversationRepo.CountMessages(ctx, conversationID)
	if err != nil {
		return false, err
	}

	ledger := entity.BuildContactShareLedger(records, userID)
	return ledger.CanOffer(count, uc.policy.MinMessages), nil
}

func (uc *ConversationUseCase) findExistingConversation(ctx context.Context, userID1, userID2 string) (*entity.Conversation, error) {
	conversations, _, err := uc.conversationRepo.ListByUserID(ctx, userID1, -1, 0)
	if err != nil {
		log.Printf("findExistingConversation Error: Failed to list conversations for user %s: %v", userID1, err)
		return nil, errors.Internal("Failed to list conversations for user", err)
	}

	for _, conversation := range conversations {
		if len(conversation.Participants) == 2 && conversation.HasParticipant(userID1) && conversation.HasParticipant(userID2) {
			return conversation, nil
		}
	}

	return nil, errors.NotFound("Conversation", nil)
}
