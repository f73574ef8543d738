package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"mingle_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ConversationService owns lazy conversation creation and message storage.
type ConversationService struct {
	Dynamo DB
	Clock  func() time.Time // nil means time.Now
}

func (cs *ConversationService) now() time.Time {
	if cs.Clock != nil {
		return cs.Clock()
	}
	return time.Now()
}

func conversationKey(pairKey, convType string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: pairKey},
		"type":    &types.AttributeValueMemberS{Value: convType},
	}
}

// ForPair returns the conversation for (pair, type), or ErrNotFound.
func (cs *ConversationService) ForPair(ctx context.Context, userA, userB, convType string) (*models.Conversation, error) {
	pairKey := models.PairKey(userA, userB)
	item, err := cs.Dynamo.GetItem(ctx, models.ConversationsTable, conversationKey(pairKey, convType))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation %s/%s: %w", pairKey, convType, err)
	}
	if item == nil {
		return nil, fmt.Errorf("conversation %s/%s: %w", pairKey, convType, models.ErrNotFound)
	}

	var conversation models.Conversation
	if err := attributevalue.UnmarshalMap(item, &conversation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return &conversation, nil
}

// FetchOrCreate returns the conversation for (pair, type), creating it on
// first use. The conditional insert guarantees a single conversation per
// pair+type even under concurrent creators; the second creator fetches the
// winner's row. The returned bool reports whether this call created it.
func (cs *ConversationService) FetchOrCreate(ctx context.Context, userA, userB, convType string) (*models.Conversation, bool, error) {
	pairKey := models.PairKey(userA, userB)

	existing, err := cs.ForPair(ctx, userA, userB, convType)
	if err == nil {
		return existing, false, nil
	}

	now := cs.now().UTC().Format(time.RFC3339)
	participants := []string{userA, userB}
	sort.Strings(participants)
	conversation := &models.Conversation{
		PairKey:        pairKey,
		Type:           convType,
		ConversationID: uuid.NewString(),
		Participants:   participants,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	created, err := cs.Dynamo.PutItemIfAbsent(ctx, models.ConversationsTable, conversation, "pairKey")
	if err != nil {
		return nil, false, fmt.Errorf("failed to create conversation: %w", err)
	}
	if !created {
		// Lost the race; the existing row is canonical.
		winner, err := cs.ForPair(ctx, userA, userB, convType)
		if err != nil {
			return nil, false, err
		}
		return winner, false, nil
	}

	log.Printf("💬 Created %s conversation %s for pair %s", convType, conversation.ConversationID, pairKey)
	return conversation, true, nil
}

// SendMessage appends a message and touches the conversation's lastMessage
// and updatedAt.
func (cs *ConversationService) SendMessage(ctx context.Context, conversation *models.Conversation, senderID, content string) (*models.Message, error) {
	now := cs.now().UTC().Format(time.RFC3339)
	message := &models.Message{
		ConversationID: conversation.ConversationID,
		MessageID:      uuid.NewString(),
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      now,
		IsUnread:       true,
	}

	if err := cs.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	updateExpression := "SET #lastMessage = :lastMessage, #updatedAt = :updatedAt"
	_, err := cs.Dynamo.UpdateItem(ctx, models.ConversationsTable, updateExpression,
		conversationKey(conversation.PairKey, conversation.Type),
		map[string]types.AttributeValue{
			":lastMessage": &types.AttributeValueMemberS{Value: content},
			":updatedAt":   &types.AttributeValueMemberS{Value: now},
		},
		map[string]string{
			"#lastMessage": "lastMessage",
			"#updatedAt":   "updatedAt",
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to touch conversation %s: %w", conversation.ConversationID, err)
	}
	return message, nil
}

// Messages fetches messages for a conversation, newest first.
func (cs *ConversationService) Messages(ctx context.Context, conversationID string, limit int32) ([]models.Message, error) {
	keyCondition := "conversationId = :conversationId"
	expressionValues := map[string]types.AttributeValue{
		":conversationId": &types.AttributeValueMemberS{Value: conversationID},
	}

	items, err := cs.Dynamo.QueryItems(ctx, models.MessagesTable, keyCondition, expressionValues, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt > messages[j].CreatedAt
	})
	return messages, nil
}
