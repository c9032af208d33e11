package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tradenest/internal/domain/entity"
	"tradenest/internal/domain/repository"
	"tradenest/pkg/errors"
	"tradenest/pkg/logger"
)

type firestoreContactShareRepository struct {
	client *firestore.Client
}

func NewFirestoreContactShareRepository(client *firestore.Client) repository.ContactShareRepository {
	return &firestoreContactShareRepository{
		client: client,
	}
}

func (r *firestoreContactShareRepository) Create(ctx context.Context, record *entity.ContactShareRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	record.SharedAt = time.Now()

	_, err := r.client.Collection("contactShares").Doc(record.ID).Set(ctx, record)
	if err != nil {
		return errors.Internal("Failed to create contact share", err)
	}

	return nil
}

func (r *firestoreContactShareRepository) GetByID(ctx context.Context, id string) (*entity.ContactShareRecord, error) {
	doc, err := r.client.Collection("contactShares").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Contact share", nil)
		}
		return nil, errors.Internal("Failed to get contact share", err)
	}

	var record entity.ContactShareRecord
	if err := doc.DataTo(&record); err != nil {
		return nil, errors.Internal("Failed to parse contact share data", err)
	}

	return &record, nil
}

func (r *firestoreContactShareRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.ContactShareRecord, error) {
	query := r.client.Collection("contactShares").Where("conversationId", "==", conversationID)

	iter := query.Documents(ctx)
	var records []*entity.ContactShareRecord

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating contact shares for conversation %s: %v", conversationID, err)
			return nil, errors.Internal("Failed to iterate contact shares", err)
		}

		var record entity.ContactShareRecord
		if err := doc.DataTo(&record); err != nil {
			logger.Error("Error parsing contact share data for conversation %s: %v", conversationID, err)
			continue
		}
		records = append(records, &record)
	}

	return records, nil
}

func (r *firestoreContactShareRepository) Update(ctx context.Context, record *entity.ContactShareRecord) error {
	_, err := r.client.Collection("contactShares").Doc(record.ID).Set(ctx, record)
	if err != nil {
		return errors.Internal("Failed to update contact share", err)
	}

	return nil
}

func (r *firestoreContactShareRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("contactShares").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete contact share", err)
	}

	return nil
}
