package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"interview-coach/internal/cache"
	"interview-coach/internal/domain"
	"interview-coach/internal/logger"
	"interview-coach/internal/util"

	"go.uber.org/zap"
)

// BlobStorage loads and stores a whole collection at once.
type BlobStorage interface {
	Load(ctx context.Context) ([]domain.Document, error)
	Save(ctx context.Context, docs []domain.Document) error
}

// BlobCollection is a DocumentCollection that rewrites its entire backing
// blob on every mutation. Within one process, mutations are serialised and
// reads never overlap a mutation.
type BlobCollection struct {
	name    string
	storage BlobStorage
	mu      sync.RWMutex
}

var _ domain.DocumentCollection = (*BlobCollection)(nil)

// NewBlobCollection creates a collection over storage.
func NewBlobCollection(name string, storage BlobStorage) *BlobCollection {
	return &BlobCollection{name: name, storage: storage}
}

// NewMemoryCollection creates a process-local collection.
func NewMemoryCollection(name string) *BlobCollection {
	return NewBlobCollection(name, &memoryStorage{})
}

// NewCacheCollection creates a collection stored as one JSON array under a
// cache key.
func NewCacheCollection(name string, c domain.Cache) *BlobCollection {
	return NewBlobCollection(name, &cacheStorage{cache: c, key: cache.CollectionKey(name)})
}

func (c *BlobCollection) Find(ctx context.Context, query domain.Document) ([]domain.Document, error) {
	q, err := Encode(query)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	docs, err := c.storage.Load(ctx)
	c.mu.RUnlock()
	if err != nil {
		return nil, c.wrap("find", err)
	}
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if Matches(d, q) {
			out = append(out, Clone(d))
		}
	}
	return out, nil
}

func (c *BlobCollection) FindOne(ctx context.Context, query domain.Document) (domain.Document, error) {
	q, err := Encode(query)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	docs, err := c.storage.Load(ctx)
	c.mu.RUnlock()
	if err != nil {
		return nil, c.wrap("findOne", err)
	}
	for _, d := range docs {
		if Matches(d, q) {
			return Clone(d), nil
		}
	}
	return nil, nil
}

func (c *BlobCollection) InsertOne(ctx context.Context, doc domain.Document) (domain.Document, error) {
	stored, err := Encode(doc)
	if err != nil {
		return nil, err
	}
	stored[domain.DocumentIDField] = util.NewULID()

	c.mu.Lock()
	defer c.mu.Unlock()

	docs, err := c.storage.Load(ctx)
	if err != nil {
		return nil, c.wrap("insertOne", err)
	}
	if err := c.storage.Save(ctx, append(docs, stored)); err != nil {
		return nil, c.wrap("insertOne", err)
	}
	return Clone(stored), nil
}

func (c *BlobCollection) UpdateOne(ctx context.Context, query domain.Document, set domain.Document) (domain.UpdateResult, error) {
	q, err := Encode(query)
	if err != nil {
		return domain.UpdateResult{}, err
	}
	s, err := Encode(set)
	if err != nil {
		return domain.UpdateResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	docs, err := c.storage.Load(ctx)
	if err != nil {
		return domain.UpdateResult{}, c.wrap("updateOne", err)
	}
	for i, d := range docs {
		if !Matches(d, q) {
			continue
		}
		updated, changed, err := ApplySet(d, s)
		if err != nil {
			return domain.UpdateResult{}, err
		}
		if !changed {
			return domain.UpdateResult{Matched: 1}, nil
		}
		docs[i] = updated
		if err := c.storage.Save(ctx, docs); err != nil {
			return domain.UpdateResult{}, c.wrap("updateOne", err)
		}
		return domain.UpdateResult{Matched: 1, Modified: 1}, nil
	}
	return domain.UpdateResult{}, nil
}

func (c *BlobCollection) DeleteOne(ctx context.Context, query domain.Document) (int, error) {
	return c.delete(ctx, "deleteOne", query, 1)
}

func (c *BlobCollection) DeleteMany(ctx context.Context, query domain.Document) (int, error) {
	return c.delete(ctx, "deleteMany", query, -1)
}

// delete removes up to limit matches; a negative limit removes all.
func (c *BlobCollection) delete(ctx context.Context, op string, query domain.Document, limit int) (int, error) {
	q, err := Encode(query)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	docs, err := c.storage.Load(ctx)
	if err != nil {
		return 0, c.wrap(op, err)
	}
	kept := make([]domain.Document, 0, len(docs))
	deleted := 0
	for _, d := range docs {
		if (limit < 0 || deleted < limit) && Matches(d, q) {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	if deleted == 0 {
		return 0, nil
	}
	if err := c.storage.Save(ctx, kept); err != nil {
		return 0, c.wrap(op, err)
	}
	return deleted, nil
}

func (c *BlobCollection) wrap(op string, err error) error {
	logger.Get().Error("Document collection operation failed",
		zap.String("collection", c.name),
		zap.String("op", op),
		zap.Error(err))
	return fmt.Errorf("docstore: %s %s: %w", c.name, op, err)
}

type memoryStorage struct {
	docs []domain.Document
}

func (m *memoryStorage) Load(_ context.Context) ([]domain.Document, error) {
	out := make([]domain.Document, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

func (m *memoryStorage) Save(_ context.Context, docs []domain.Document) error {
	m.docs = docs
	return nil
}

// cacheStorage keeps the collection as a JSON array under one key. An
// unreadable array is treated as empty, the way a corrupt entry in browser
// storage would be.
type cacheStorage struct {
	cache domain.Cache
	key   string
}

func (s *cacheStorage) Load(ctx context.Context) ([]domain.Document, error) {
	raw, err := s.cache.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return []domain.Document{}, nil
		}
		return nil, err
	}
	var docs []domain.Document
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		logger.Get().Warn("Discarding unreadable collection blob", zap.String("key", s.key), zap.Error(err))
		return []domain.Document{}, nil
	}
	return docs, nil
}

func (s *cacheStorage) Save(ctx context.Context, docs []domain.Document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, s.key, string(raw), time.Duration(0))
}
