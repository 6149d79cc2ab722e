package models

import "time"

// Follow is one edge of the follow graph. A single row carries both
// directions, so creating or deleting it keeps follower/following symmetric.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  string    `json:"followerId" gorm:"index;uniqueIndex:idx_follower_following;size:36"`
	FollowingID string    `json:"followingId" gorm:"uniqueIndex:idx_follower_following;size:36"`
	CreatedAt   time.Time `json:"createdAt"`
}
