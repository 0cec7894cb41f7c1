package repository

import (
	"context"
	"fmt"
	"sort"

	"interview-coach/internal/docstore"
	"interview-coach/internal/domain"
)

// historyRepository keeps InterviewRecord documents tagged by owner email.
type historyRepository struct {
	histories domain.DocumentCollection
}

func NewHistoryRepository(histories domain.DocumentCollection) domain.HistoryRepository {
	return &historyRepository{histories: histories}
}

func ownerQuery(email string) domain.Document {
	return domain.Document{"userEmail": domain.NormalizeEmail(email)}
}

// Save inserts the record and sets its ID.
func (r *historyRepository) Save(ctx context.Context, record *domain.InterviewRecord) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	toStore := *record
	toStore.ID = ""
	toStore.UserEmail = domain.NormalizeEmail(record.UserEmail)

	doc, err := docstore.Encode(toStore)
	if err != nil {
		return err
	}
	saved, err := r.histories.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	record.ID = docstore.ID(saved)
	return nil
}

func (r *historyRepository) ListByEmail(ctx context.Context, email string) ([]domain.InterviewRecord, error) {
	docs, err := r.histories.Find(ctx, ownerQuery(email))
	if err != nil {
		return nil, err
	}
	records := make([]domain.InterviewRecord, 0, len(docs))
	for _, doc := range docs {
		var rec domain.InterviewRecord
		if err := docstore.Decode(doc, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records, nil
}

func (r *historyRepository) DeleteByEmail(ctx context.Context, email string) (int, error) {
	return r.histories.DeleteMany(ctx, ownerQuery(email))
}

// Reassign moves every record owned by fromEmail to toEmail.
func (r *historyRepository) Reassign(ctx context.Context, fromEmail, toEmail string) (int, error) {
	from, to := domain.NormalizeEmail(fromEmail), domain.NormalizeEmail(toEmail)
	if from == to {
		return 0, nil
	}
	docs, err := r.histories.Find(ctx, ownerQuery(from))
	if err != nil {
		return 0, err
	}
	moved := 0
	for _, doc := range docs {
		res, err := r.histories.UpdateOne(ctx,
			domain.Document{domain.DocumentIDField: docstore.ID(doc)},
			domain.Document{"userEmail": to})
		if err != nil {
			return moved, err
		}
		moved += res.Modified
	}
	return moved, nil
}
