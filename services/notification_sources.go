package services

import (
	"context"
	"fmt"

	"mingle_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// The five feed contributors. Match and friend-request sources read this
// engine's own tables; post replies and event activity are collaborator
// tables read at their interface boundary only.

// DefaultSources wires the standard source set against one DB.
func DefaultSources(db DB) []NotificationSource {
	return []NotificationSource{
		&MatchSource{Dynamo: db},
		&FriendRequestSource{Dynamo: db},
		&PostReplySource{Dynamo: db},
		&EventActivitySource{Dynamo: db, ActivityKind: models.EventActivityJoin, SourceKind: models.SourceEventJoin},
		&EventActivitySource{Dynamo: db, ActivityKind: models.EventActivityMessage, SourceKind: models.SourceEventMessage},
	}
}

// MatchSource surfaces the user's match records.
type MatchSource struct {
	Dynamo DB
}

func (s *MatchSource) Kind() string { return models.SourceMatch }

func (s *MatchSource) Fetch(ctx context.Context, userID string, limit int32) ([]models.NotificationItem, error) {
	var records []models.MatchRecord
	for _, index := range []struct {
		name string
		attr string
	}{
		{models.UserAIndex, "userA"},
		{models.UserBIndex, "userB"},
	} {
		keyCondition := index.attr + " = :userId"
		expressionValues := map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userID},
		}
		items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, index.name, keyCondition, expressionValues, nil, limit)
		if err != nil {
			return nil, fmt.Errorf("match source: %w", err)
		}
		var side []models.MatchRecord
		if err := attributevalue.UnmarshalListOfMaps(items, &side); err != nil {
			return nil, fmt.Errorf("match source: %w", err)
		}
		records = append(records, side...)
	}

	notifications := make([]models.NotificationItem, 0, len(records))
	for _, record := range records {
		notifications = append(notifications, models.NotificationItem{
			ID:         models.NotificationID(models.SourceMatch, record.PairKey),
			SourceKind: models.SourceMatch,
			NativeID:   record.PairKey,
			Timestamp:  record.MatchedAt,
			ActorID:    record.Other(userID),
			Payload:    "You have a new match",
		})
	}
	return notifications, nil
}

// FriendRequestSource surfaces pending requests addressed to the user.
type FriendRequestSource struct {
	Dynamo DB
}

func (s *FriendRequestSource) Kind() string { return models.SourceFriendRequest }

func (s *FriendRequestSource) Fetch(ctx context.Context, userID string, limit int32) ([]models.NotificationItem, error) {
	keyCondition := "addresseeId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}
	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.RelationshipsTable, models.AddresseeIndex, keyCondition, expressionValues, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("friend request source: %w", err)
	}

	var edges []models.RelationshipEdge
	if err := attributevalue.UnmarshalListOfMaps(items, &edges); err != nil {
		return nil, fmt.Errorf("friend request source: %w", err)
	}

	var notifications []models.NotificationItem
	for _, edge := range edges {
		if edge.Status != models.StatusPending {
			continue
		}
		notifications = append(notifications, models.NotificationItem{
			ID:         models.NotificationID(models.SourceFriendRequest, edge.EdgeID),
			SourceKind: models.SourceFriendRequest,
			NativeID:   edge.EdgeID,
			Timestamp:  edge.CreatedAt,
			ActorID:    edge.RequesterID,
			Payload:    edge.FirstMessage,
		})
	}
	return notifications, nil
}

// PostReplySource surfaces replies to the user's posts.
type PostReplySource struct {
	Dynamo DB
}

func (s *PostReplySource) Kind() string { return models.SourcePostReply }

func (s *PostReplySource) Fetch(ctx context.Context, userID string, limit int32) ([]models.NotificationItem, error) {
	keyCondition := "recipientId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}
	items, err := s.Dynamo.QueryItems(ctx, models.PostRepliesTable, keyCondition, expressionValues, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("post reply source: %w", err)
	}

	var replies []models.PostReply
	if err := attributevalue.UnmarshalListOfMaps(items, &replies); err != nil {
		return nil, fmt.Errorf("post reply source: %w", err)
	}

	notifications := make([]models.NotificationItem, 0, len(replies))
	for _, reply := range replies {
		notifications = append(notifications, models.NotificationItem{
			ID:         models.NotificationID(models.SourcePostReply, reply.ReplyID),
			SourceKind: models.SourcePostReply,
			NativeID:   reply.ReplyID,
			Timestamp:  reply.CreatedAt,
			ActorID:    reply.AuthorID,
			Payload:    reply.Preview,
		})
	}
	return notifications, nil
}

// EventActivitySource surfaces joins or messages on events the user belongs
// to; one instance per activity kind.
type EventActivitySource struct {
	Dynamo       DB
	ActivityKind string // join, message
	SourceKind   string // eventJoin, eventMessage
}

func (s *EventActivitySource) Kind() string { return s.SourceKind }

func (s *EventActivitySource) Fetch(ctx context.Context, userID string, limit int32) ([]models.NotificationItem, error) {
	keyCondition := "recipientId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}
	items, err := s.Dynamo.QueryItems(ctx, models.EventActivityTable, keyCondition, expressionValues, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("event activity source: %w", err)
	}

	var activities []models.EventActivity
	if err := attributevalue.UnmarshalListOfMaps(items, &activities); err != nil {
		return nil, fmt.Errorf("event activity source: %w", err)
	}

	var notifications []models.NotificationItem
	for _, activity := range activities {
		if activity.Kind != s.ActivityKind {
			continue
		}
		notifications = append(notifications, models.NotificationItem{
			ID:         models.NotificationID(s.SourceKind, activity.ActivityID),
			SourceKind: s.SourceKind,
			NativeID:   activity.ActivityID,
			Timestamp:  activity.CreatedAt,
			ActorID:    activity.ActorID,
			Payload:    activity.Preview,
		})
	}
	return notifications, nil
}
