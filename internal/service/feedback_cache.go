package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"interview-coach/internal/cache"
	"interview-coach/internal/domain"
	"interview-coach/internal/logger"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// FeedbackCache decorates an InterviewCoach so that identical
// (question, answer) pairs reuse earlier feedback. Every other operation
// goes straight to the wrapped coach. Cache failures only cost a model call.
type FeedbackCache struct {
	domain.InterviewCoach
	cache domain.Cache
	ttl   time.Duration
}

// NewFeedbackCache wraps coach. A nil cache returns coach unchanged.
func NewFeedbackCache(coach domain.InterviewCoach, c domain.Cache, ttl time.Duration) domain.InterviewCoach {
	if c == nil {
		logger.Get().Warn("FeedbackCache initialized with nil cache. Answer feedback will not be cached.")
		return coach
	}
	return &FeedbackCache{InterviewCoach: coach, cache: c, ttl: ttl}
}

// feedbackDigest hashes the normalised pair. The separator keeps
// ("ab","c") and ("a","bc") apart.
func feedbackDigest(question, answer string) string {
	h := blake3.New()
	_, _ = h.Write([]byte(strings.TrimSpace(question)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strings.TrimSpace(answer)))
	return hex.EncodeToString(h.Sum(nil))
}

func (f *FeedbackCache) AnalyzeAnswer(ctx context.Context, question, answer string) (*domain.IndividualFeedback, error) {
	l := logger.Get()
	key := cache.FeedbackKey(feedbackDigest(question, answer))

	raw, err := f.cache.Get(ctx, key)
	switch {
	case err == nil:
		var fb domain.IndividualFeedback
		jsonErr := json.Unmarshal([]byte(raw), &fb)
		if jsonErr == nil {
			l.Debug("Answer feedback cache hit", zap.String("key", key))
			return &fb, nil
		}
		l.Warn("Discarding unreadable cached feedback", zap.String("key", key), zap.Error(jsonErr))
	case errors.Is(err, domain.ErrCacheMiss):
		l.Debug("Answer feedback cache miss", zap.String("key", key))
	default:
		l.Error("Failed to read answer feedback cache", zap.String("key", key), zap.Error(err))
	}

	fb, err := f.InterviewCoach.AnalyzeAnswer(ctx, question, answer)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(fb); err != nil {
		l.Error("Failed to marshal answer feedback for caching", zap.Error(err))
	} else if err := f.cache.Set(ctx, key, string(data), f.ttl); err != nil {
		l.Error("Failed to cache answer feedback", zap.String("key", key), zap.Error(err))
	}
	return fb, nil
}
