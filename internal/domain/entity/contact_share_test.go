package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildContactShareLedgerSlots(t *testing.T) {
	mine := &ContactShareRecord{ID: "s1", ConversationID: "c1", UserID: "me", Status: ContactShareStatusPending}
	theirsPending := &ContactShareRecord{ID: "s2", ConversationID: "c1", UserID: "them", Status: ContactShareStatusPending}
	theirsAccepted := &ContactShareRecord{ID: "s3", ConversationID: "c1", UserID: "them", Status: ContactShareStatusAccepted}

	ledger := BuildContactShareLedger([]*ContactShareRecord{mine, theirsPending}, "me")
	assert.Equal(t, mine, ledger.Sent)
	assert.Equal(t, theirsPending, ledger.Request)
	assert.Nil(t, ledger.Received)

	// The same records seen from the counterpart's side.
	ledger = BuildContactShareLedger([]*ContactShareRecord{mine, theirsPending}, "them")
	assert.Equal(t, theirsPending, ledger.Sent)
	assert.Equal(t, mine, ledger.Request)

	ledger = BuildContactShareLedger([]*ContactShareRecord{theirsAccepted}, "me")
	assert.Nil(t, ledger.Sent)
	assert.Nil(t, ledger.Request)
	assert.Equal(t, theirsAccepted, ledger.Received)
}

func TestContactShareLedgerState(t *testing.T) {
	sentPending := &ContactShareRecord{UserID: "me", Status: ContactShareStatusPending}
	sentAccepted := &ContactShareRecord{UserID: "me", Status: ContactShareStatusAccepted}
	incoming := &ContactShareRecord{UserID: "them", Status: ContactShareStatusPending}
	received := &ContactShareRecord{UserID: "them", Status: ContactShareStatusAccepted}

	assert.Equal(t, ContactShareStateIdle, (&ContactShareLedger{}).State())
	assert.Equal(t, ContactShareStateOffered, (&ContactShareLedger{Sent: sentPending}).State())
	assert.Equal(t, ContactShareStateAwaitingDecision, (&ContactShareLedger{Request: incoming}).State())
	assert.Equal(t, ContactShareStateShared, (&ContactShareLedger{Sent: sentAccepted}).State())
	assert.Equal(t, ContactShareStateShared, (&ContactShareLedger{Received: received}).State())

	// An undecided incoming request outranks an already shared record.
	assert.Equal(t, ContactShareStateAwaitingDecision, (&ContactShareLedger{Sent: sentAccepted, Request: incoming}).State())
}

func TestContactShareLedgerCanOffer(t *testing.T) {
	empty := &ContactShareLedger{}
	assert.False(t, empty.CanOffer(2, 3))
	assert.True(t, empty.CanOffer(3, 3))
	assert.True(t, empty.CanOffer(10, 3))

	withSentPending := &ContactShareLedger{Sent: &ContactShareRecord{Status: ContactShareStatusPending}}
	assert.False(t, withSentPending.CanOffer(10, 3))

	withSentAccepted := &ContactShareLedger{Sent: &ContactShareRecord{Status: ContactShareStatusAccepted}}
	assert.False(t, withSentAccepted.CanOffer(10, 3))

	// An incoming request alone does not block offering.
	withRequest := &ContactShareLedger{Request: &ContactShareRecord{Status: ContactShareStatusPending}}
	assert.True(t, withRequest.CanOffer(3, 3))
}
