package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"tradenest/internal/domain/entity"
	"tradenest/internal/domain/repository"
	"tradenest/internal/infrastructure/ratelimit"
	ws "tradenest/internal/infrastructure/websocket"
	"tradenest/pkg/errors"
)

const (
	ContactTypePhone = "phone"
	ContactTypeEmail = "email"
	ContactTypeBoth  = "both"
)

// ContactSharePolicy configures the gating rule and which contact fields an
// offer must carry. MinMessages is a policy constant, not a structural one.
type ContactSharePolicy struct {
	MinMessages int
	ContactType string
}

var (
	nonDigits    = regexp.MustCompile(`\D+`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ContactShareUseCase drives the offer/accept/decline transitions of the
// contact-share ledger. Transitions whose precondition no longer holds (the
// record is gone or already decided) succeed as no-ops so that racing
// clients converge on the stored state instead of erroring.
type ContactShareUseCase struct {
	contactShareRepo repository.ContactShareRepository
	conversationRepo repository.ConversationRepository
	userRepo         repository.UserRepository
	wsManager        *ws.Manager
	rateLimiter      *ratelimit.RateLimiter
	policy           ContactSharePolicy
}

func NewContactShareUseCase(
	contactShareRepo repository.ContactShareRepository,
	conversationRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	wsManager *ws.Manager,
	policy ContactSharePolicy,
) *ContactShareUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ContactShareUseCase{
		contactShareRepo: contactShareRepo,
		conversationRepo: conversationRepo,
		userRepo:         userRepo,
		wsManager:        wsManager,
		rateLimiter:      rateLimiter,
		policy:           policy,
	}
}

type OfferContactInput struct {
	ConversationID string
	Name           string
	Phone          string
	Email          string
	Message        string
}

type ContactShareLedgerResponse struct {
	*entity.ContactShareLedger
	State    string `json:"state"`
	CanOffer bool   `json:"can_offer"`
}

// GetLedger returns the caller's view of the conversation's contact shares.
func (uc *ContactShareUseCase) GetLedger(ctx context.Context, userID, conversationID string) (*ContactShareLedgerResponse, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !conversation.HasParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	records, err := uc.contactShareRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	count, err := uc.conversationRepo.CountMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	ledger := entity.BuildContactShareLedger(records, userID)
	return &ContactShareLedgerResponse{
		ContactShareLedger: ledger,
		State:              ledger.State(),
		CanOffer:           ledger.CanOffer(count, uc.policy.MinMessages),
	}, nil
}

// Offer creates a pending contact-share record. Input validation happens
// first, before any repository call; at most one record is created per
// successful call.
func (uc *ContactShareUseCase) Offer(ctx context.Context, userID string, input OfferContactInput) (*entity.ContactShareRecord, error) {
	if err := uc.validateOffer(input); err != nil {
		return nil, err
	}

	allowed, waitTime := uc.rateLimiter.Allow(userID, "share_contact")
	if !allowed {
		log.Printf("Offer Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sharing contact details again", waitTime)
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, input.ConversationID)
	if err != nil {
		log.Printf("Offer Error: Conversation %s not found: %v", input.ConversationID, err)
		return nil, err
	}

	if !conversation.HasParticipant(userID) {
		log.Printf("Offer Error: User %s is not a participant in conversation %s", userID, input.ConversationID)
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	records, err := uc.contactShareRepo.ListByConversation(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}

	ledger := entity.BuildContactShareLedger(records, userID)
	if ledger.Sent != nil {
		return nil, errors.Conflict("Contact details already shared in this conversation")
	}

	count, err := uc.conversationRepo.CountMessages(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if count < uc.policy.MinMessages {
		return nil, errors.BadRequest(fmt.Sprintf("Contact details can be shared after at least %d messages", uc.policy.MinMessages), nil)
	}

	record := &entity.ContactShareRecord{
		ConversationID: input.ConversationID,
		UserID:         userID,
		Name:           input.Name,
		Phone:          input.Phone,
		Email:          input.Email,
		Message:        strings.TrimSpace(input.Message),
		Status:         entity.ContactShareStatusPending,
	}

	if err := uc.contactShareRepo.Create(ctx, record); err != nil {
		log.Printf("Offer Error: Failed to create contact share for conversation %s: %v", input.ConversationID, err)
		return nil, err
	}

	notification := map[string]interface{}{
		"type":            "contact_share_request",
		"conversation_id": input.ConversationID,
		"share":           record,
	}
	notificationJSON, _ := json.Marshal(notification)
	uc.wsManager.SendToUser(conversation.OtherParticipant(userID), notificationJSON)

	return record, nil
}

// Accept marks a pending incoming offer as accepted: the offerer's sent slot
// becomes accepted and the record moves into the caller's received slot. A
// missing or already-accepted record is a no-op, not an error, so a
// double-click or a stale client converges silently.
func (uc *ContactShareUseCase) Accept(ctx context.Context, userID, shareID string) (*entity.ContactShareRecord, error) {
	record, err := uc.contactShareRepo.GetByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			log.Printf("Accept: Contact share %s no longer exists, nothing to do", shareID)
			return nil, nil
		}
		return nil, err
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, record.ConversationID)
	if err != nil {
		return nil, err
	}

	if !conversation.HasParticipant(userID) {
		return nil, errors.Forbidden("User is not a participant in this conversation", nil)
	}

	if record.UserID == userID {
		return nil, errors.Forbidden("You cannot accept your own contact share", nil)
	}

	if record.Status == entity.ContactShareStatusAccepted {
		return record, nil
	}

	record.Status = entity.ContactShareStatusAccepted
	record.AcceptedAt = time.Now()

	if err := uc.contactShareRepo.Update(ctx, record); err != nil {
		log.Printf("Accept Error: Failed to update contact share %s: %v", shareID, err)
		return nil, errors.Internal("Failed to accept contact share", err)
	}

	notification := map[string]interface{}{
		"type":            "contact_share_update",
		"conversation_id": record.ConversationID,
		"share_id":        record.ID,
		"status":          entity.ContactShareStatusAccepted,
		"accepted_by":     userID,
	}
	notificationJSON, _ := json.Marshal(notification)
	uc.wsManager.SendToUser(record.UserID, notificationJSON)

	return record, nil
}

// Decline deletes a pending incoming offer; nothing is retained, returning
// the offerer to idle. Only pending records can be declined: a missing or
// already-accepted record is a no-op.
func (uc *ContactShareUseCase) Decline(ctx context.Context, userID, shareID string) error {
	record, err := uc.contactShareRepo.GetByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, "NOT_FOUND") {
			log.Printf("Decline: Contact share %s no longer exists, nothing to do", shareID)
			return nil
		}
		return err
	}

	conversation, err := uc.conversationRepo.GetByID(ctx, record.ConversationID)
	if err != nil {
		return err
	}

	if !conversation.HasParticipant(userID) {
		return errors.Forbidden("User is not a participant in this conversation", nil)
	}

	if record.UserID == userID {
		return errors.Forbidden("You cannot decline your own contact share", nil)
	}

	if record.Status != entity.ContactShareStatusPending {
		return nil
	}

	if err := uc.contactShareRepo.Delete(ctx, shareID); err != nil {
		log.Printf("Decline Error: Failed to delete contact share %s: %v", shareID, err)
		return errors.Internal("Failed to decline contact share", err)
	}

	notification := map[string]interface{}{
		"type":            "contact_share_update",
		"conversation_id": record.ConversationID,
		"share_id":        record.ID,
		"status":          "declined",
		"declined_by":     userID,
	}
	notificationJSON, _ := json.Marshal(notification)
	uc.wsManager.SendToUser(record.UserID, notificationJSON)

	return nil
}

func (uc *ContactShareUseCase) validateOffer(input OfferContactInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return errors.Validation("name", "name is required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return errors.Validation("message", "message is required")
	}

	requirePhone := uc.policy.ContactType == ContactTypePhone || uc.policy.ContactType == ContactTypeBoth
	requireEmail := uc.policy.ContactType == ContactTypeEmail || uc.policy.ContactType == ContactTypeBoth

	if requirePhone && input.Phone == "" {
		return errors.Validation("phone", "phone number is required")
	}
	if requireEmail && input.Email == "" {
		return errors.Validation("email", "email address is required")
	}

	if input.Phone != "" {
		if digits := nonDigits.ReplaceAllString(input.Phone, ""); len(digits) != 10 {
			return errors.Validation("phone", "phone number must be 10 digits")
		}
	}
	if input.Email != "" && !emailPattern.MatchString(input.Email) {
		return errors.Validation("email", "email address is invalid")
	}

	return nil
}
