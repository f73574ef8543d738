package models

// Relationship edge statuses
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusBlocked  = "blocked"
)

// Swipe directions
const (
	DirectionLeft  = "left"
	DirectionRight = "right"
	DirectionUp    = "up"
)

// Swipe / conversation types
const (
	TypeDating  = "dating"
	TypeFriends = "friends"
)

// Notification source kinds
const (
	SourceMatch         = "match"
	SourceFriendRequest = "friendRequest"
	SourcePostReply     = "postReply"
	SourceEventJoin     = "eventJoin"
	SourceEventMessage  = "eventMessage"
)

// IsPositiveDirection reports whether a swipe direction signals interest.
func IsPositiveDirection(direction string) bool {
	return direction == DirectionRight || direction == DirectionUp
}
