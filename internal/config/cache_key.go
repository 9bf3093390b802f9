package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionKey returns the cache key holding a user's active session JTI.
func (r *CacheKeyStruct) SessionKey(userID string) string {
	return fmt.Sprintf("login:%s", userID)
}

// AnnouncementChannel returns the Redis PubSub channel for a course's
// announcement feed.
func (r *CacheKeyStruct) AnnouncementChannel(courseID string) string {
	return fmt.Sprintf("course:%s:announcements", courseID)
}

var CacheKey = NewCacheKeyStruct()
