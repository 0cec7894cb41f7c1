package cache

import "strings"

const (
	GlobalKeyPrefix = "coach"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// IdentityKey holds the persisted identity of a client session.
func IdentityKey(sessionID string) string {
	return GenerateCacheKey("session", "identity", sessionID)
}

// SnapshotKey holds the resumable interview snapshot of a client session.
func SnapshotKey(sessionID string) string {
	return GenerateCacheKey("session", "snapshot", sessionID)
}

// CollectionKey holds one document collection serialized as a JSON array.
func CollectionKey(name string) string {
	return GenerateCacheKey("docstore", "collection", name)
}

// FeedbackKey holds cached answer feedback for a question/answer digest.
func FeedbackKey(digest string) string {
	return GenerateCacheKey("coach", "feedback", digest)
}
