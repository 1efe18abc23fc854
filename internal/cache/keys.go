package cache

import "fmt"

// Key builders for the follower/following projection cache.
//
// The follows table is the source of truth; these entries are an
// explicitly invalidated cache, deleted on every follow/unfollow touching
// the user. They are never written back to the database.

func FollowersKey(userID string) string {
	return fmt.Sprintf("social:followers:%s", userID)
}

func FollowingKey(userID string) string {
	return fmt.Sprintf("social:following:%s", userID)
}

func FriendsKey(userID string) string {
	return fmt.Sprintf("social:friends:%s", userID)
}

// NotificationChannel is the pub/sub channel for a user's live
// notification feed.
func NotificationChannel(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}
