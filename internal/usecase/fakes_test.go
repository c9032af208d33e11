package usecase

import (
	"context"
	"fmt"
	"time"

	"tradenest/internal/domain/entity"
	ws "tradenest/internal/infrastructure/websocket"
	"tradenest/pkg/errors"
)

type fakeConversationRepo struct {
	conversations map[string]*entity.Conversation
	messages      map[string][]*entity.Message

	createMessageCalls int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[string]*entity.Conversation),
		messages:      make(map[string][]*entity.Message),
	}
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = fmt.Sprintf("conv-%d", len(r.conversations)+1)
	}
	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now
	r.conversations[conversation.ID] = conversation
	return nil
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, errors.NotFound("Conversation", nil)
	}
	return conversation, nil
}

func (r *fakeConversationRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error) {
	var result []*entity.Conversation
	for _, conversation := range r.conversations {
		if conversation.HasParticipant(userID) {
			result = append(result, conversation)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	if _, ok := r.conversations[conversation.ID]; !ok {
		return errors.NotFound("Conversation", nil)
	}
	conversation.UpdatedAt = time.Now()
	r.conversations[conversation.ID] = conversation
	return nil
}

func (r *fakeConversationRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.createMessageCalls++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", len(r.messages[message.ConversationID])+1)
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.messages[message.ConversationID] = append(r.messages[message.ConversationID], message)
	return nil
}

func (r *fakeConversationRepo) GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error) {
	messages := r.messages[conversationID]
	return messages, int64(len(messages)), nil
}

func (r *fakeConversationRepo) CountMessages(ctx context.Context, conversationID string) (int, error) {
	return len(r.messages[conversationID]), nil
}

func (r *fakeConversationRepo) GetMessageByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error) {
	for _, message := range r.messages[conversationID] {
		if message.ID == messageID {
			return message, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *fakeConversationRepo) UpdateMessage(ctx context.Context, conversationID string, message *entity.Message) error {
	for i, existing := range r.messages[conversationID] {
		if existing.ID == message.ID {
			r.messages[conversationID][i] = message
			return nil
		}
	}
	return errors.NotFound("Message", nil)
}

type fakeContactShareRepo struct {
	records map[string]*entity.ContactShareRecord

	createCalls int
	updateCalls int
	deleteCalls int
}

func newFakeContactShareRepo() *fakeContactShareRepo {
	return &fakeContactShareRepo{
		records: make(map[string]*entity.ContactShareRecord),
	}
}

func (r *fakeContactShareRepo) Create(ctx context.Context, record *entity.ContactShareRecord) error {
	r.createCalls++
	if record.ID == "" {
		record.ID = fmt.Sprintf("share-%d", len(r.records)+1)
	}
	record.SharedAt = time.Now()
	r.records[record.ID] = record
	return nil
}

func (r *fakeContactShareRepo) GetByID(ctx context.Context, id string) (*entity.ContactShareRecord, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, errors.NotFound("Contact share", nil)
	}
	return record, nil
}

func (r *fakeContactShareRepo) ListByConversation(ctx context.Context, conversationID string) ([]*entity.ContactShareRecord, error) {
	var result []*entity.ContactShareRecord
	for _, record := range r.records {
		if record.ConversationID == conversationID {
			result = append(result, record)
		}
	}
	return result, nil
}

func (r *fakeContactShareRepo) Update(ctx context.Context, record *entity.ContactShareRecord) error {
	r.updateCalls++
	if _, ok := r.records[record.ID]; !ok {
		return errors.NotFound("Contact share", nil)
	}
	r.records[record.ID] = record
	return nil
}

func (r *fakeContactShareRepo) Delete(ctx context.Context, id string) error {
	r.deleteCalls++
	delete(r.records, id)
	return nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, id := range ids {
		repo.users[id] = &entity.User{ID: id, Username: id, Email: id + "@example.com"}
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

type fixture struct {
	conversationRepo *fakeConversationRepo
	contactShareRepo *fakeContactShareRepo
	userRepo         *fakeUserRepo
	conversations    *ConversationUseCase
	contactShares    *ContactShareUseCase
}

func newFixture(policy ContactSharePolicy) *fixture {
	conversationRepo := newFakeConversationRepo()
	contactShareRepo := newFakeContactShareRepo()
	userRepo := newFakeUserRepo("buyer-1", "seller-1")
	wsManager := ws.NewManager()

	return &fixture{
		conversationRepo: conversationRepo,
		contactShareRepo: contactShareRepo,
		userRepo:         userRepo,
		conversations:    NewConversationUseCase(conversationRepo, contactShareRepo, userRepo, wsManager, policy),
		contactShares:    NewContactShareUseCase(contactShareRepo, conversationRepo, userRepo, wsManager, policy),
	}
}

func (f *fixture) seedConversation(id string) *entity.Conversation {
	conversation := &entity.Conversation{
		ID:           id,
		Participants: []string{"buyer-1", "seller-1"},
		BuyerID:      "buyer-1",
		SellerID:     "seller-1",
		UnreadCount:  make(map[string]int),
	}
	f.conversationRepo.conversations[id] = conversation
	return conversation
}

func (f *fixture) seedMessages(conversationID string, count int) {
	for i := 0; i < count; i++ {
		sender := "buyer-1"
		if i%2 == 1 {
			sender = "seller-1"
		}
		f.conversationRepo.messages[conversationID] = append(f.conversationRepo.messages[conversationID], &entity.Message{
			ID:             fmt.Sprintf("seed-msg-%d", i+1),
			ConversationID: conversationID,
			SenderID:       sender,
			Content:        fmt.Sprintf("message %d", i+1),
			CreatedAt:      time.Now(),
		})
	}
}

func (f *fixture) seedShare(id, conversationID, userID, status string) *entity.ContactShareRecord {
	record := &entity.ContactShareRecord{
		ID:             id,
		ConversationID: conversationID,
		UserID:         userID,
		Name:           userID,
		Phone:          "9876543210",
		Email:          userID + "@example.com",
		Message:        "Reaching out",
		Status:         status,
		SharedAt:       time.Now(),
	}
	f.contactShareRepo.records[id] = record
	return record
}
