package models

// Conversation is the message thread for one (pair, type). Created lazily on
// first accepted request or first match; lookup-or-create never duplicates.
type Conversation struct {
	PairKey        string   `dynamodbav:"pairKey" json:"pairKey"` // Partition Key
	Type           string   `dynamodbav:"type" json:"type"`       // Sort Key: dating, friends
	ConversationID string   `dynamodbav:"conversationId" json:"conversationId"`
	Participants   []string `dynamodbav:"participants" json:"participants"`
	LastMessage    string   `dynamodbav:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	CreatedAt      string   `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      string   `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Message is a single chat message within a conversation.
type Message struct {
	ConversationID string `dynamodbav:"conversationId" json:"conversationId"` // Partition Key
	MessageID      string `dynamodbav:"messageId" json:"messageId"`           // Sort Key
	SenderID       string `dynamodbav:"senderId" json:"senderId"`
	Content        string `dynamodbav:"content" json:"content"`
	CreatedAt      string `dynamodbav:"createdAt" json:"createdAt"`
	IsUnread       bool   `dynamodbav:"isUnread" json:"isUnread"`
}

const ConversationsTable = "Conversations"
const MessagesTable = "Messages"
