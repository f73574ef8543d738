package models

// NotificationItem is one entry in the unified feed. Items are recomputed on
// each aggregation pass and are unique per (sourceKind, native id).
type NotificationItem struct {
	ID         string `json:"id"` // sourceKind + "#" + nativeId
	SourceKind string `json:"sourceKind"`
	NativeID   string `json:"nativeId"`
	Timestamp  string `json:"timestamp"`
	IsRead     bool   `json:"isRead"`
	ActorID    string `json:"actorId"`
	Payload    string `json:"payload,omitempty"`
}

// NotificationID builds the feed-wide unique ID for a source-native row.
func NotificationID(sourceKind, nativeID string) string {
	return sourceKind + "#" + nativeID
}

// NotificationCursor is the per-user read watermark: an item is read iff its
// timestamp is at or before LastViewedAt.
type NotificationCursor struct {
	UserID       string `dynamodbav:"userId" json:"userId"` // Partition Key
	LastViewedAt string `dynamodbav:"lastViewedAt" json:"lastViewedAt"`
}

// PostReply is a reply to one of the user's posts, read at the collaborator
// boundary for feed aggregation only.
type PostReply struct {
	RecipientID string `dynamodbav:"recipientId" json:"recipientId"` // Partition Key
	ReplyID     string `dynamodbav:"replyId" json:"replyId"`         // Sort Key
	AuthorID    string `dynamodbav:"authorId" json:"authorId"`
	Preview     string `dynamodbav:"preview,omitempty" json:"preview,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
}

// EventActivity is a join or message on an event the user belongs to, read at
// the collaborator boundary for feed aggregation only.
type EventActivity struct {
	RecipientID string `dynamodbav:"recipientId" json:"recipientId"` // Partition Key
	ActivityID  string `dynamodbav:"activityId" json:"activityId"`   // Sort Key
	Kind        string `dynamodbav:"kind" json:"kind"`               // join, message
	ActorID     string `dynamodbav:"actorId" json:"actorId"`
	Preview     string `dynamodbav:"preview,omitempty" json:"preview,omitempty"`
	CreatedAt   string `dynamodbav:"createdAt" json:"createdAt"`
}

const (
	NotificationCursorsTable = "NotificationCursors"
	PostRepliesTable         = "PostReplies"
	EventActivityTable       = "EventActivity"
)

const (
	EventActivityJoin    = "join"
	EventActivityMessage = "message"
)
