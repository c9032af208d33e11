package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "tradenest/pkg/errors"
)

func defaultPolicy() ContactSharePolicy {
	return ContactSharePolicy{MinMessages: 3, ContactType: ContactTypeBoth}
}

func TestSendMessageRejectsEmptySend(t *testing.T) {
	f := newFixture(defaultPolicy())
	f.seedConversation("conv-1")

	_, err := f.conversations.SendMessage(context.Background(), "buyer-1", SendMessageInput{
		ConversationID: "conv-1",
		Content:        "   ",
	})

	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, "VALIDATION_ERROR"))
	// Rejected locally: nothing reached the repository.
	assert.Equal(t, 0, f.conversationRepo.createMessageCalls)
}

func TestSendMessageAllowsAttachmentOnlySend(t *testing.T) {
	f := newFixture(defaultPolicy())
	f.seedConversation("conv-1")

	resp, err := f.conversations.SendMessage(context.Background(), "buyer-1", SendMessageInput{
		ConversationID: "conv-1",
		Content:        "",
		AttachmentURLs: []string{"https://cdn.example.com/photo.jpg"},
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 1, f.conversationRepo.createMessageCalls)
}

func TestSendMessageUpdatesSummaryAndUnreadCount(t *testing.T) {
	f := newFixture(defaultPolicy())
	conversation := f.seedConversation("conv-1")

	resp, err := f.conversations.SendMessage(context.Background(), "buyer-1", SendMessageInput{
		ConversationID: "conv-1",
		Content:        "Is this still available?",
	})

	assert.NoError(t, err)
	assert.Equal(t, "buyer-1", resp.SenderID)
	assert.False(t, resp.IsRead)
	assert.Equal(t, "Is this still available?", conversation.LastMessage)
	assert.Equal(t, 1, conversation.UnreadCount["seller-1"])
	assert.Equal(t, 0, conversation.UnreadCount["buyer-1"])
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	f := newFixture(defaultPolicy())
	f.seedConversation("conv-1")

	_, err := f.conversations.SendMessage(context.Background(), "stranger", SendMessageInput{
		ConversationID: "conv-1",
		Content:        "hello",
	})

	assert.True(t, apperrors.Is(err, "FORBIDDEN"))
	assert.Equal(t, 0, f.conversationRepo.createMessageCalls)
}

func TestMarkMessageAsReadDecrementsOnce(t *testing.T) {
	f := newFixture(defaultPolicy())
	conversation := f.seedConversation("conv-1")
	f.seedMessages("conv-1", 2)
	conversation.UnreadCount["buyer-1"] = 2

	// seed-msg-2 was sent by seller-1, so buyer-1 may mark it.
	err := f.conversations.MarkMessageAsRead(context.Background(), "buyer-1", "conv-1", "seed-msg-2")
	assert.NoError(t, err)
	assert.Equal(t, 1, conversation.UnreadCount["buyer-1"])

	message, _ := f.conversationRepo.GetMessageByID(context.Background(), "conv-1", "seed-msg-2")
	assert.True(t, message.IsRead)

	// Second call is a no-op: the flag stays true and the count is untouched.
	err = f.conversations.MarkMessageAsRead(context.Background(), "buyer-1", "conv-1", "seed-msg-2")
	assert.NoError(t, err)
	assert.Equal(t, 1, conversation.UnreadCount["buyer-1"])
}

func TestMarkMessageAsReadFloorsAtZero(t *testing.T) {
	f := newFixture(defaultPolicy())
	conversation := f.seedConversation("conv-1")
	f.seedMessages("conv-1", 2)

	err := f.conversations.MarkMessageAsRead(context.Background(), "buyer-1", "conv-1", "seed-msg-2")
	assert.NoError(t, err)
	assert.Equal(t, 0, conversation.UnreadCount["buyer-1"])
}

func TestMarkMessageAsReadIgnoresOwnMessage(t *testing.T) {
	f := newFixture(defaultPolicy())
	conversation := f.seedConversation("conv-1")
	f.seedMessages("conv-1", 1)
	conversation.UnreadCount["buyer-1"] = 1

	// seed-msg-1 was sent by buyer-1.
	err := f.conversations.MarkMessageAsRead(context.Background(), "buyer-1", "conv-1", "seed-msg-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, conversation.UnreadCount["buyer-1"])

	message, _ := f.conversationRepo.GetMessageByID(context.Background(), "conv-1", "seed-msg-1")
	assert.False(t, message.IsRead)
}

func TestMarkMessageAsReadMissingMessageIsNoop(t *testing.T) {
	f := newFixture(defaultPolicy())
	f.seedConversation("conv-1")

	err := f.conversations.MarkMessageAsRead(context.Background(), "buyer-1", "conv-1", "gone")
	assert.NoError(t, err)
}

func TestCanOfferContactBelowThreshold(t *testing.T) {
	f := newFixture(defaultPolicy())
	f.seedConversation("conv-1")
	f.seedMessages("conv-1", 2)

	canOffer, err := f.conversations.CanOfferContact(context.Background(), "buyer-1", "conv-1")
	assert.NoError(t, err)
	assert.False(t, canOffer)
}

func TestCanOfferContactAtThreshold(t *testing.T) {
	f := newFixture(defaultPolicy())
	f.seedConversation("conv-1")
	f.seedMessages("conv-1", 3)

	canOffer, err := f.conversations.CanOfferContact(context.Background(), "buyer-1", "conv-1")
	assert.NoError(t, err)
	assert.True(t, canOffer)
}

func TestCanOfferContactBlockedBySentRecord(t *testing.T) {
	f := newFixture(defaultPolicy())
	f.seedConversation("conv-1")
	f.seedMessages("conv-1", 5)

	f.seedShare("share-1", "conv-1", "buyer-1", "pending")
	canOffer, err := f.conversations.CanOfferContact(context.Background(), "buyer-1", "conv-1")
	assert.NoError(t, err)
	assert.False(t, canOffer)

	// Accepted sent records block just the same.
	f.contactShareRepo.records["share-1"].Status = "accepted"
	canOffer, err = f.conversations.CanOfferContact(context.Background(), "buyer-1", "conv-1")
	assert.NoError(t, err)
	assert.False(t, canOffer)

	// The counterpart has no sent record, so their side is unaffected.
	canOffer, err = f.conversations.CanOfferContact(context.Background(), "seller-1", "conv-1")
	assert.NoError(t, err)
	assert.True(t, canOffer)
}

func TestCreateConversationReusesExistingThread(t *testing.T) {
	f := newFixture(defaultPolicy())
	f.seedConversation("conv-1")

	resp, err := f.conversations.CreateConversation(context.Background(), "buyer-1", CreateConversationInput{
		RecipientID: "seller-1",
	})

	assert.NoError(t, err)
	assert.Equal(t, "conv-1", resp.ID)
	assert.Len(t, f.conversationRepo.conversations, 1)
}

func TestCreateConversationRejectsSelf(t *testing.T) {
	f := newFixture(defaultPolicy())

	_, err := f.conversations.CreateConversation(context.Background(), "buyer-1", CreateConversationInput{
		RecipientID: "buyer-1",
	})

	assert.True(t, apperrors.Is(err, "BAD_REQUEST"))
}
