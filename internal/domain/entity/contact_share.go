package entity

import "time"

const (
	ContactShareStatusPending  = "pending"
	ContactShareStatusAccepted = "accepted"
)

// Ledger states derived from the slots, from the viewing user's perspective.
const (
	ContactShareStateIdle             = "idle"
	ContactShareStateOffered          = "offered"
	ContactShareStateAwaitingDecision = "awaiting_decision"
	ContactShareStateShared           = "shared"
)

// ContactShareRecord is one party's offer of contact details inside a
// conversation. A declined record is deleted outright, never retained, so
// the only statuses that persist are pending and accepted.
type ContactShareRecord struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	UserID         string    `json:"user_id" firestore:"userId"` // offering party
	Name           string    `json:"name" firestore:"name"`
	Phone          string    `json:"phone,omitempty" firestore:"phone,omitempty"`
	Email          string    `json:"email,omitempty" firestore:"email,omitempty"`
	Message        string    `json:"message" firestore:"message"`
	Status         string    `json:"status" firestore:"status"`
	SharedAt       time.Time `json:"shared_at" firestore:"sharedAt"`
	AcceptedAt     time.Time `json:"accepted_at,omitempty" firestore:"acceptedAt,omitempty"`
}

// ContactShareLedger is one user's view of a conversation's contact shares,
// folded into three slots. Each slot holds at most one record:
//
//   - Sent: a record this user created (pending or accepted)
//   - Received: the counterpart's record this user has accepted
//   - Request: the counterpart's record still awaiting this user's decision
type ContactShareLedger struct {
	Sent     *ContactShareRecord `json:"sent,omitempty"`
	Received *ContactShareRecord `json:"received,omitempty"`
	Request  *ContactShareRecord `json:"request,omitempty"`
}

// BuildContactShareLedger folds a conversation's records into slots for
// viewerID. A counterpart's pending record always lands in Request, even
// when the viewer has an outstanding offer of their own: simultaneous mutual
// offers do not auto-resolve, each party must accept the other's explicitly.
func BuildContactShareLedger(records []*ContactShareRecord, viewerID string) *ContactShareLedger {
	ledger := &ContactShareLedger{}
	for _, record := range records {
		if record.UserID == viewerID {
			ledger.Sent = record
			continue
		}
		switch record.Status {
		case ContactShareStatusPending:
			ledger.Request = record
		case ContactShareStatusAccepted:
			ledger.Received = record
		}
	}
	return ledger
}

// State derives the ledger state. An undecided incoming request takes
// precedence; otherwise any accepted record on either side means contact
// details have been exchanged.
func (l *ContactShareLedger) State() string {
	switch {
	case l.Request != nil:
		return ContactShareStateAwaitingDecision
	case l.Received != nil:
		return ContactShareStateShared
	case l.Sent != nil && l.Sent.Status == ContactShareStatusAccepted:
		return ContactShareStateShared
	case l.Sent != nil:
		return ContactShareStateOffered
	default:
		return ContactShareStateIdle
	}
}

// CanOffer is the gating rule: a new offer is allowed only when this user
// has no outstanding sent record and the conversation has reached the
// configured minimum number of messages.
func (l *ContactShareLedger) CanOffer(messageCount, minMessages int) bool {
	return l.Sent == nil && messageCount >= minMessages
}
