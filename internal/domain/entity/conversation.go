package entity

import "time"

// RelatedTo points a conversation at the listing it was opened about. It is
// display-only context; nothing in the messaging core depends on it.
type RelatedTo struct {
	Type  string `json:"type" firestore:"type"` // "product", "order", "service"
	ID    string `json:"id" firestore:"id"`
	Title string `json:"title" firestore:"title"`
}

type Conversation struct {
	ID            string         `json:"id" firestore:"id"`
	Participants  []string       `json:"participants" firestore:"participants"` // exactly two: buyer and seller
	BuyerID       string         `json:"buyer_id,omitempty" firestore:"buyerId,omitempty"`
	SellerID      string         `json:"seller_id,omitempty" firestore:"sellerId,omitempty"`
	RelatedTo     *RelatedTo     `json:"related_to,omitempty" firestore:"relatedTo,omitempty"`
	LastMessage   string         `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageAt time.Time      `json:"last_message_at" firestore:"lastMessageAt"`
	UnreadCount   map[string]int `json:"unread_count" firestore:"unreadCount"` // userID -> unread messages
	CreatedAt     time.Time      `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time      `json:"updated_at" firestore:"updatedAt"`
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the counterpart of userID, or "" when userID is
// not a participant.
func (c *Conversation) OtherParticipant(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}
