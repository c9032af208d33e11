package repository

import (
	"context"

	"tradenest/internal/domain/entity"
)

type ContactShareRepository interface {
	Create(ctx context.Context, record *entity.ContactShareRecord) error
	GetByID(ctx context.Context, id string) (*entity.ContactShareRecord, error)
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.ContactShareRecord, error)
	Update(ctx context.Context, record *entity.ContactShareRecord) error
	Delete(ctx context.Context, id string) error
}
