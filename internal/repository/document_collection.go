package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"interview-coach/internal/docstore"
	"interview-coach/internal/domain"
	"interview-coach/internal/logger"
	"interview-coach/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	selectDocumentsQuery = `SELECT doc_id, body FROM documents WHERE collection = ? ORDER BY doc_id`
	insertDocumentQuery  = `INSERT INTO documents (doc_id, collection, body, created_at) VALUES (?, ?, ?, ?)`
	updateDocumentQuery  = `UPDATE documents SET body = ? WHERE doc_id = ?`
	deleteDocumentQuery  = `DELETE FROM documents WHERE doc_id = ?`
	deleteDocumentsQuery = `DELETE FROM documents WHERE doc_id IN (?)`
)

// SQLDocumentCollection stores each document as one JSON row of the shared
// documents table. Queries scan the collection in insertion order, which
// follows doc_id because IDs are monotonic ULIDs.
type SQLDocumentCollection struct {
	db   *sqlx.DB
	tm   *TransactionManager
	name string
}

var _ domain.DocumentCollection = (*SQLDocumentCollection)(nil)

func NewSQLDocumentCollection(db *sqlx.DB, name string) *SQLDocumentCollection {
	return &SQLDocumentCollection{db: db, tm: NewTransactionManager(db), name: name}
}

// scan loads the collection, calling fn for each matching document until it
// returns false.
func (c *SQLDocumentCollection) scan(ctx context.Context, query domain.Document, fn func(domain.Document) bool) error {
	q, err := docstore.Encode(query)
	if err != nil {
		return err
	}
	exec := GetExecutor(ctx, c.db)
	rows, err := exec.QueryxContext(ctx, exec.Rebind(selectDocumentsQuery), c.name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return err
		}
		var doc domain.Document
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			logger.Get().Warn("Skipping unreadable document",
				zap.String("collection", c.name), zap.String("doc_id", id), zap.Error(err))
			continue
		}
		if doc == nil {
			continue
		}
		doc[domain.DocumentIDField] = id
		if docstore.Matches(doc, q) && !fn(doc) {
			break
		}
	}
	return rows.Err()
}

func (c *SQLDocumentCollection) Find(ctx context.Context, query domain.Document) ([]domain.Document, error) {
	out := []domain.Document{}
	err := c.scan(ctx, query, func(d domain.Document) bool {
		out = append(out, d)
		return true
	})
	if err != nil {
		return nil, c.wrap("find", err)
	}
	return out, nil
}

func (c *SQLDocumentCollection) FindOne(ctx context.Context, query domain.Document) (domain.Document, error) {
	found, err := c.first(ctx, query)
	if err != nil {
		return nil, c.wrap("findOne", err)
	}
	return found, nil
}

func (c *SQLDocumentCollection) first(ctx context.Context, query domain.Document) (domain.Document, error) {
	var found domain.Document
	err := c.scan(ctx, query, func(d domain.Document) bool {
		found = d
		return false
	})
	return found, err
}

func (c *SQLDocumentCollection) InsertOne(ctx context.Context, doc domain.Document) (domain.Document, error) {
	stored, err := docstore.Encode(doc)
	if err != nil {
		return nil, err
	}
	id := util.NewULID()
	delete(stored, domain.DocumentIDField)
	body, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}

	exec := GetExecutor(ctx, c.db)
	if _, err := exec.ExecContext(ctx, exec.Rebind(insertDocumentQuery), id, c.name, string(body), time.Now().UTC()); err != nil {
		return nil, c.wrap("insertOne", err)
	}
	stored[domain.DocumentIDField] = id
	return stored, nil
}

func (c *SQLDocumentCollection) UpdateOne(ctx context.Context, query domain.Document, set domain.Document) (domain.UpdateResult, error) {
	s, err := docstore.Encode(set)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	var result domain.UpdateResult
	err = c.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		target, err := c.first(txCtx, query)
		if err != nil || target == nil {
			return err
		}
		result.Matched = 1

		updated, changed, err := docstore.ApplySet(target, s)
		if err != nil || !changed {
			return err
		}
		id := docstore.ID(updated)
		delete(updated, domain.DocumentIDField)
		body, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		exec := GetExecutor(txCtx, c.db)
		if _, err := exec.ExecContext(txCtx, exec.Rebind(updateDocumentQuery), string(body), id); err != nil {
			return err
		}
		result.Modified = 1
		return nil
	})
	if err != nil {
		return domain.UpdateResult{}, c.wrap("updateOne", err)
	}
	return result, nil
}

func (c *SQLDocumentCollection) DeleteOne(ctx context.Context, query domain.Document) (int, error) {
	deleted := 0
	err := c.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		target, err := c.first(txCtx, query)
		if err != nil || target == nil {
			return err
		}
		exec := GetExecutor(txCtx, c.db)
		res, err := exec.ExecContext(txCtx, exec.Rebind(deleteDocumentQuery), docstore.ID(target))
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = int(n)
		return err
	})
	if err != nil {
		return 0, c.wrap("deleteOne", err)
	}
	return deleted, nil
}

func (c *SQLDocumentCollection) DeleteMany(ctx context.Context, query domain.Document) (int, error) {
	deleted := 0
	err := c.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		var ids []string
		err := c.scan(txCtx, query, func(d domain.Document) bool {
			ids = append(ids, docstore.ID(d))
			return true
		})
		if err != nil || len(ids) == 0 {
			return err
		}
		stmt, args, err := sqlx.In(deleteDocumentsQuery, ids)
		if err != nil {
			return err
		}
		exec := GetExecutor(txCtx, c.db)
		res, err := exec.ExecContext(txCtx, exec.Rebind(stmt), args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = int(n)
		return err
	})
	if err != nil {
		return 0, c.wrap("deleteMany", err)
	}
	return deleted, nil
}

func (c *SQLDocumentCollection) wrap(op string, err error) error {
	logger.Get().Error("Document collection operation failed",
		zap.String("collection", c.name),
		zap.String("op", op),
		zap.Error(err))
	return fmt.Errorf("repository: %s %s: %w", c.name, op, err)
}
