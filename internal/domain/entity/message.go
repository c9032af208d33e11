package entity

import "time"

// Message is immutable once created except for IsRead, which may only
// transition false -> true.
type Message struct {
	ID             string    `json:"id" firestore:"id"`
	ConversationID string    `json:"conversation_id" firestore:"conversationId"`
	SenderID       string    `json:"sender_id" firestore:"senderId"`
	Content        string    `json:"content" firestore:"content"`
	AttachmentURLs []string  `json:"attachment_urls,omitempty" firestore:"attachmentUrls,omitempty"`
	IsRead         bool      `json:"is_read" firestore:"isRead"`
	CreatedAt      time.Time `json:"created_at" firestore:"createdAt"`
}
