package cache

import "strings"

const (
	GlobalKeyPrefix = "smartstudy"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	parts := []string{GlobalKeyPrefix, serviceName, objectType, identifier}
	if len(paramsKey) > 0 {
		parts = append(parts, strings.Join(paramsKey, "_"))
	}
	return strings.Join(parts, ":")
}

// ExtractionKey addresses extracted text by the hash of the uploaded documents.
func ExtractionKey(contentHash string) string {
	return GenerateCacheKey("extract", "text", contentHash)
}

// JobKey addresses the state hash of a generation job.
func JobKey(jobID string) string {
	return GenerateCacheKey("quizjob", "state", jobID)
}

// JobEventsKey addresses the progress history list of a generation job.
func JobEventsKey(jobID string) string {
	return GenerateCacheKey("quizjob", "events", jobID)
}
