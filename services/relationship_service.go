package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"mingle_server/events"
	"mingle_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// RelationshipService owns friend-request and block state transitions for a
// pair of users. Edges are directional: at most one row exists per ordered
// (requester, addressee) pair.
//
// State machine: none -> pending -> accepted (terminal) or back to none via
// decline-delete. Blocked is reachable from any state and absorbing until an
// explicit unblock.
type RelationshipService struct {
	Dynamo        DB
	Conversations *ConversationService
	Profiles      *UserProfileService
	Events        *events.Emitter
	Clock         func() time.Time // nil means time.Now
}

func (rs *RelationshipService) now() time.Time {
	if rs.Clock != nil {
		return rs.Clock()
	}
	return time.Now()
}

func (rs *RelationshipService) publish(topic, userID string) {
	if rs.Events != nil {
		rs.Events.Publish(topic, userID)
	}
}

func edgeKey(requesterID, addresseeID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"requesterId": &types.AttributeValueMemberS{Value: requesterID},
		"addresseeId": &types.AttributeValueMemberS{Value: addresseeID},
	}
}

// getEdge returns the directed edge, or nil when none exists.
func (rs *RelationshipService) getEdge(ctx context.Context, requesterID, addresseeID string) (*models.RelationshipEdge, error) {
	item, err := rs.Dynamo.GetItem(ctx, models.RelationshipsTable, edgeKey(requesterID, addresseeID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch edge %s -> %s: %w", requesterID, addresseeID, err)
	}
	if item == nil {
		return nil, nil
	}

	var edge models.RelationshipEdge
	if err := attributevalue.UnmarshalMap(item, &edge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edge: %w", err)
	}
	return &edge, nil
}

// SendRequest creates a fresh pending edge from one user to another. The
// optional message is stored on the edge and seeds the conversation on
// acceptance. A declined edge is deleted first so the request can be retried;
// accepted and blocked edges reject the request.
func (rs *RelationshipService) SendRequest(ctx context.Context, from, to, message string) (*models.RelationshipEdge, error) {
	if from == to {
		return nil, fmt.Errorf("cannot send a request to yourself")
	}

	forward, err := rs.getEdge(ctx, from, to)
	if err != nil {
		return nil, err
	}
	reverse, err := rs.getEdge(ctx, to, from)
	if err != nil {
		return nil, err
	}

	for _, edge := range []*models.RelationshipEdge{forward, reverse} {
		if edge == nil {
			continue
		}
		switch edge.Status {
		case models.StatusBlocked:
			return nil, fmt.Errorf("%s <-> %s: %w", from, to, models.ErrBlocked)
		case models.StatusAccepted:
			return nil, fmt.Errorf("%s <-> %s: %w", from, to, models.ErrAlreadyFriends)
		}
	}
	if forward != nil {
		switch forward.Status {
		case models.StatusPending:
			return nil, fmt.Errorf("%s -> %s: %w", from, to, models.ErrRequestAlreadySent)
		case models.StatusDeclined:
			// The one retry path through an otherwise-terminal state.
			if err := rs.Dynamo.DeleteItem(ctx, models.RelationshipsTable, edgeKey(from, to)); err != nil {
				return nil, fmt.Errorf("failed to clear declined edge: %w", err)
			}
		}
	}

	now := rs.now().UTC().Format(time.RFC3339)
	edge := &models.RelationshipEdge{
		RequesterID:  from,
		AddresseeID:  to,
		EdgeID:       uuid.NewString(),
		Status:       models.StatusPending,
		FirstMessage: message,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := rs.Dynamo.PutItem(ctx, models.RelationshipsTable, edge); err != nil {
		return nil, fmt.Errorf("failed to create request edge: %w", err)
	}

	log.Printf("🤝 Request sent: %s -> %s", from, to)
	rs.publish(events.TopicRequestsChanged, to)
	return edge, nil
}

// findEdgeByID resolves an edge through the edgeId GSI.
func (rs *RelationshipService) findEdgeByID(ctx context.Context, edgeID string) (*models.RelationshipEdge, error) {
	keyCondition := "edgeId = :edgeId"
	expressionValues := map[string]types.AttributeValue{
		":edgeId": &types.AttributeValueMemberS{Value: edgeID},
	}

	items, err := rs.Dynamo.QueryItemsWithIndex(ctx, models.RelationshipsTable, models.EdgeIndex, keyCondition, expressionValues, nil, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to look up edge %s: %w", edgeID, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("edge %s: %w", edgeID, models.ErrNotFound)
	}

	var edge models.RelationshipEdge
	if err := attributevalue.UnmarshalMap(items[0], &edge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edge: %w", err)
	}
	return &edge, nil
}

// Respond accepts or declines a pending request addressed to userID. Accept
// transitions the edge, records the friendship on both profiles, and returns
// the friends conversation seeded with the request's first message. Decline
// deletes the edge so the requester may resend later; the conversation result
// is nil in that case.
func (rs *RelationshipService) Respond(ctx context.Context, userID, edgeID string, accept bool) (*models.Conversation, error) {
	edge, err := rs.findEdgeByID(ctx, edgeID)
	if err != nil {
		return nil, err
	}
	if edge.AddresseeID != userID || edge.Status != models.StatusPending {
		return nil, fmt.Errorf("edge %s for %s: %w", edgeID, userID, models.ErrNotFound)
	}

	if !accept {
		if err := rs.Dynamo.DeleteItem(ctx, models.RelationshipsTable, edgeKey(edge.RequesterID, edge.AddresseeID)); err != nil {
			return nil, fmt.Errorf("failed to delete declined edge: %w", err)
		}
		log.Printf("🙅 Request declined: %s -> %s", edge.RequesterID, edge.AddresseeID)
		rs.publish(events.TopicRequestsChanged, userID)
		return nil, nil
	}

	edge.Status = models.StatusAccepted
	edge.UpdatedAt = rs.now().UTC().Format(time.RFC3339)
	if err := rs.Dynamo.PutItem(ctx, models.RelationshipsTable, edge); err != nil {
		return nil, fmt.Errorf("failed to accept edge: %w", err)
	}

	// A crossed request in the other direction is satisfied by this accept;
	// leaving it pending would let it be accepted a second time.
	reverse, err := rs.getEdge(ctx, edge.AddresseeID, edge.RequesterID)
	if err != nil {
		return nil, err
	}
	if reverse != nil && reverse.Status == models.StatusPending {
		if err := rs.Dynamo.DeleteItem(ctx, models.RelationshipsTable, edgeKey(reverse.RequesterID, reverse.AddresseeID)); err != nil {
			return nil, fmt.Errorf("failed to clear crossed request: %w", err)
		}
	}

	if err := rs.Profiles.AddFriend(ctx, userID, edge.RequesterID); err != nil {
		return nil, err
	}
	if err := rs.Profiles.AddFriend(ctx, edge.RequesterID, userID); err != nil {
		return nil, err
	}

	conversation, created, err := rs.Conversations.FetchOrCreate(ctx, edge.RequesterID, edge.AddresseeID, models.TypeFriends)
	if err != nil {
		return nil, err
	}
	if created && edge.FirstMessage != "" {
		if _, err := rs.Conversations.SendMessage(ctx, conversation, edge.RequesterID, edge.FirstMessage); err != nil {
			return nil, err
		}
		conversation.LastMessage = edge.FirstMessage
	}

	log.Printf("✅ Request accepted: %s <-> %s", edge.RequesterID, edge.AddresseeID)
	rs.publish(events.TopicFriendsChanged, userID)
	rs.publish(events.TopicFriendsChanged, edge.RequesterID)
	return conversation, nil
}

// Block marks the relationship blocked. Blocking is absorbing: every
// existing edge between the two users, in either direction and whatever its
// status, is overwritten to blocked; a fresh blocked edge is inserted only
// when none existed.
func (rs *RelationshipService) Block(ctx context.Context, userID, targetID string) error {
	now := rs.now().UTC().Format(time.RFC3339)

	absorbed := false
	for _, pair := range [][2]string{{userID, targetID}, {targetID, userID}} {
		edge, err := rs.getEdge(ctx, pair[0], pair[1])
		if err != nil {
			return err
		}
		if edge == nil {
			continue
		}
		edge.Status = models.StatusBlocked
		edge.UpdatedAt = now
		if err := rs.Dynamo.PutItem(ctx, models.RelationshipsTable, edge); err != nil {
			return fmt.Errorf("failed to block edge %s -> %s: %w", pair[0], pair[1], err)
		}
		absorbed = true
	}

	if !absorbed {
		edge := &models.RelationshipEdge{
			RequesterID: userID,
			AddresseeID: targetID,
			EdgeID:      uuid.NewString(),
			Status:      models.StatusBlocked,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := rs.Dynamo.PutItem(ctx, models.RelationshipsTable, edge); err != nil {
			return fmt.Errorf("failed to insert blocked edge: %w", err)
		}
	}

	log.Printf("🚫 %s blocked %s", userID, targetID)
	rs.publish(events.TopicFriendsChanged, userID)
	return nil
}

// Unblock deletes any blocked edge between the two users, restoring mutual
// visibility.
func (rs *RelationshipService) Unblock(ctx context.Context, userID, targetID string) error {
	for _, pair := range [][2]string{{userID, targetID}, {targetID, userID}} {
		edge, err := rs.getEdge(ctx, pair[0], pair[1])
		if err != nil {
			return err
		}
		if edge == nil || edge.Status != models.StatusBlocked {
			continue
		}
		if err := rs.Dynamo.DeleteItem(ctx, models.RelationshipsTable, edgeKey(pair[0], pair[1])); err != nil {
			return fmt.Errorf("failed to delete blocked edge %s -> %s: %w", pair[0], pair[1], err)
		}
	}
	rs.publish(events.TopicFriendsChanged, userID)
	return nil
}

// ListExclusions returns the union of users blocked by userID and users who
// blocked userID, for feed and discovery filtering.
func (rs *RelationshipService) ListExclusions(ctx context.Context, userID string) (map[string]bool, error) {
	exclusions := make(map[string]bool)

	outgoing, err := rs.edgesForRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, edge := range outgoing {
		if edge.Status == models.StatusBlocked {
			exclusions[edge.AddresseeID] = true
		}
	}

	incoming, err := rs.edgesForAddressee(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, edge := range incoming {
		if edge.Status == models.StatusBlocked {
			exclusions[edge.RequesterID] = true
		}
	}
	return exclusions, nil
}

// PendingRequests returns requests addressed to userID, enriched with the
// requester's snapshot.
func (rs *RelationshipService) PendingRequests(ctx context.Context, userID string) ([]models.RequestWithProfile, error) {
	incoming, err := rs.edgesForAddressee(ctx, userID)
	if err != nil {
		return nil, err
	}

	requests := make([]models.RequestWithProfile, 0, len(incoming))
	for _, edge := range incoming {
		if edge.Status != models.StatusPending {
			continue
		}
		snapshot, err := rs.Profiles.Snapshot(ctx, edge.RequesterID)
		if err != nil {
			log.Printf("⚠️ Skipping request from %s: %v", edge.RequesterID, err)
			continue
		}
		requests = append(requests, models.RequestWithProfile{Edge: edge, Requester: snapshot})
	}
	return requests, nil
}

// SentRequests returns userID's outgoing pending requests.
func (rs *RelationshipService) SentRequests(ctx context.Context, userID string) ([]models.RelationshipEdge, error) {
	outgoing, err := rs.edgesForRequester(ctx, userID)
	if err != nil {
		return nil, err
	}

	var pending []models.RelationshipEdge
	for _, edge := range outgoing {
		if edge.Status == models.StatusPending {
			pending = append(pending, edge)
		}
	}
	return pending, nil
}

func (rs *RelationshipService) edgesForRequester(ctx context.Context, userID string) ([]models.RelationshipEdge, error) {
	keyCondition := "requesterId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := rs.Dynamo.QueryItems(ctx, models.RelationshipsTable, keyCondition, expressionValues, nil, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges for requester %s: %w", userID, err)
	}

	var edges []models.RelationshipEdge
	if err := attributevalue.UnmarshalListOfMaps(items, &edges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
	}
	return edges, nil
}

func (rs *RelationshipService) edgesForAddressee(ctx context.Context, userID string) ([]models.RelationshipEdge, error) {
	keyCondition := "addresseeId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := rs.Dynamo.QueryItemsWithIndex(ctx, models.RelationshipsTable, models.AddresseeIndex, keyCondition, expressionValues, nil, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges for addressee %s: %w", userID, err)
	}

	var edges []models.RelationshipEdge
	if err := attributevalue.UnmarshalListOfMaps(items, &edges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal edges: %w", err)
	}
	return edges, nil
}
