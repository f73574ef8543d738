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
)

// DefaultDailySwipeLimit caps positive swipes per user per local calendar day.
const DefaultDailySwipeLimit = 6

// SwipeService owns the append-only swipe ledger and detects reciprocity.
// Match creation goes through a conditional insert keyed by the canonical
// pair key, so the store — not this process — is the dedup authority when two
// users swipe on each other concurrently.
type SwipeService struct {
	Dynamo        DB
	Conversations *ConversationService
	Profiles      *UserProfileService
	Events        *events.Emitter
	DailyLimit    int              // 0 means DefaultDailySwipeLimit
	Clock         func() time.Time // nil means time.Now
}

func (ss *SwipeService) now() time.Time {
	if ss.Clock != nil {
		return ss.Clock()
	}
	return time.Now()
}

func (ss *SwipeService) limit() int {
	if ss.DailyLimit > 0 {
		return ss.DailyLimit
	}
	return DefaultDailySwipeLimit
}

// startOfDay truncates t to local midnight, the counter's reset watermark.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// loadCounter returns the user's daily counter, resetting it in memory when
// the local day has rolled over since the last write.
func (ss *SwipeService) loadCounter(ctx context.Context, userID string) (*models.DailyActionCounter, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	item, err := ss.Dynamo.GetItem(ctx, models.SwipeCountersTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch swipe counter for %s: %w", userID, err)
	}

	today := startOfDay(ss.now()).Format(time.RFC3339)
	counter := &models.DailyActionCounter{UserID: userID, ResetWatermark: today}
	if item == nil {
		return counter, nil
	}
	if err := attributevalue.UnmarshalMap(item, counter); err != nil {
		return nil, fmt.Errorf("failed to unmarshal swipe counter: %w", err)
	}
	if counter.ResetWatermark < today {
		counter.Count = 0
		counter.ResetWatermark = today
	}
	return counter, nil
}

// RecordSwipe appends a directional action and, for positive reciprocal
// swipes, resolves the canonical match record and its conversation. The
// returned record is nil when no match resulted. Positive swipes past the
// daily limit fail with ErrRateLimitExceeded and are not recorded.
func (ss *SwipeService) RecordSwipe(ctx context.Context, swiper, swiped, direction, swipeType string) (*models.MatchRecord, error) {
	if swiper == swiped {
		return nil, fmt.Errorf("cannot swipe on yourself")
	}
	switch direction {
	case models.DirectionLeft, models.DirectionRight, models.DirectionUp:
	default:
		return nil, fmt.Errorf("unsupported swipe direction: %s", direction)
	}
	switch swipeType {
	case models.TypeDating, models.TypeFriends:
	default:
		return nil, fmt.Errorf("unsupported swipe type: %s", swipeType)
	}

	positive := models.IsPositiveDirection(direction)

	var counter *models.DailyActionCounter
	if positive {
		var err error
		counter, err = ss.loadCounter(ctx, swiper)
		if err != nil {
			return nil, err
		}
		if counter.Count >= ss.limit() {
			return nil, fmt.Errorf("user %s: %w", swiper, models.ErrRateLimitExceeded)
		}
	}

	action := &models.SwipeAction{
		SwiperID:  swiper,
		SwipedID:  swiped,
		Direction: direction,
		Type:      swipeType,
		CreatedAt: ss.now().UTC().Format(time.RFC3339),
	}
	if err := ss.Dynamo.PutItem(ctx, models.SwipesTable, action); err != nil {
		return nil, fmt.Errorf("failed to record swipe: %w", err)
	}

	if !positive {
		return nil, nil
	}

	counter.Count++
	if err := ss.Dynamo.PutItem(ctx, models.SwipeCountersTable, counter); err != nil {
		return nil, fmt.Errorf("failed to update swipe counter: %w", err)
	}

	reciprocal, err := ss.getSwipe(ctx, swiped, swiper)
	if err != nil {
		return nil, err
	}
	if reciprocal == nil || !reciprocal.IsPositive() || reciprocal.Type != swipeType {
		return nil, nil
	}

	return ss.resolveMatch(ctx, swiper, swiped, swipeType)
}

// resolveMatch inserts the canonical match record, falling back to the
// existing row when another writer won, then attaches the conversation and
// the counterpart snapshot for the acting user.
func (ss *SwipeService) resolveMatch(ctx context.Context, swiper, swiped, swipeType string) (*models.MatchRecord, error) {
	pairKey := models.PairKey(swiper, swiped)
	userA, userB := swiper, swiped
	if userB < userA {
		userA, userB = userB, userA
	}

	record := &models.MatchRecord{
		PairKey:   pairKey,
		UserA:     userA,
		UserB:     userB,
		Type:      swipeType,
		Matched:   true,
		MatchedAt: ss.now().UTC().Format(time.RFC3339),
	}

	created, err := ss.Dynamo.PutItemIfAbsent(ctx, models.MatchesTable, record, "pairKey")
	if err != nil {
		return nil, fmt.Errorf("failed to create match record: %w", err)
	}
	if !created {
		existing, err := ss.getMatch(ctx, pairKey)
		if err != nil {
			return nil, err
		}
		record = existing
	} else {
		log.Printf("💘 It's a match: %s", pairKey)
	}

	// The thread type follows the swipe type: a friends-mode match shares the
	// friends thread with accepted requests, a dating match gets its own.
	if _, _, err := ss.Conversations.FetchOrCreate(ctx, swiper, swiped, swipeType); err != nil {
		return nil, err
	}

	snapshot, err := ss.Profiles.Snapshot(ctx, swiped)
	if err != nil {
		return nil, err
	}
	record.Counterpart = &snapshot

	if ss.Events != nil {
		ss.Events.Publish(events.TopicMatchesChanged, swiper)
		ss.Events.Publish(events.TopicMatchesChanged, swiped)
	}
	return record, nil
}

func (ss *SwipeService) getSwipe(ctx context.Context, swiper, swiped string) (*models.SwipeAction, error) {
	key := map[string]types.AttributeValue{
		"swiperId": &types.AttributeValueMemberS{Value: swiper},
		"swipedId": &types.AttributeValueMemberS{Value: swiped},
	}
	item, err := ss.Dynamo.GetItem(ctx, models.SwipesTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch swipe %s -> %s: %w", swiper, swiped, err)
	}
	if item == nil {
		return nil, nil
	}

	var action models.SwipeAction
	if err := attributevalue.UnmarshalMap(item, &action); err != nil {
		return nil, fmt.Errorf("failed to unmarshal swipe: %w", err)
	}
	return &action, nil
}

func (ss *SwipeService) getMatch(ctx context.Context, pairKey string) (*models.MatchRecord, error) {
	key := map[string]types.AttributeValue{
		"pairKey": &types.AttributeValueMemberS{Value: pairKey},
	}
	item, err := ss.Dynamo.GetItem(ctx, models.MatchesTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch match %s: %w", pairKey, err)
	}
	if item == nil {
		return nil, fmt.Errorf("match %s: %w", pairKey, models.ErrNotFound)
	}

	var record models.MatchRecord
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}
	return &record, nil
}

// UndoSwipe deletes the swiper's action for that target. The daily counter is
// not adjusted retroactively.
func (ss *SwipeService) UndoSwipe(ctx context.Context, swiper, swiped string) error {
	key := map[string]types.AttributeValue{
		"swiperId": &types.AttributeValueMemberS{Value: swiper},
		"swipedId": &types.AttributeValueMemberS{Value: swiped},
	}
	if err := ss.Dynamo.DeleteItem(ctx, models.SwipesTable, key); err != nil {
		return fmt.Errorf("failed to undo swipe: %w", err)
	}
	return nil
}

// FetchAdmirers returns users with a positive swipe on userID, minus anyone
// userID has already swiped on in any direction.
func (ss *SwipeService) FetchAdmirers(ctx context.Context, userID string) ([]models.ProfileSnapshot, error) {
	keyCondition := "swipedId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}
	items, err := ss.Dynamo.QueryItemsWithIndex(ctx, models.SwipesTable, models.SwipedIndex, keyCondition, expressionValues, nil, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to query admirers for %s: %w", userID, err)
	}

	var received []models.SwipeAction
	if err := attributevalue.UnmarshalListOfMaps(items, &received); err != nil {
		return nil, fmt.Errorf("failed to unmarshal admirer swipes: %w", err)
	}

	decided, err := ss.swipedTargets(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var admirers []models.ProfileSnapshot
	for _, action := range received {
		if !action.IsPositive() || decided[action.SwiperID] || seen[action.SwiperID] {
			continue
		}
		seen[action.SwiperID] = true
		snapshot, err := ss.Profiles.Snapshot(ctx, action.SwiperID)
		if err != nil {
			log.Printf("⚠️ Skipping admirer %s: %v", action.SwiperID, err)
			continue
		}
		admirers = append(admirers, snapshot)
	}
	return admirers, nil
}

// swipedTargets returns the set of users the given user has swiped on.
func (ss *SwipeService) swipedTargets(ctx context.Context, userID string) (map[string]bool, error) {
	keyCondition := "swiperId = :userId"
	expressionValues := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}
	items, err := ss.Dynamo.QueryItems(ctx, models.SwipesTable, keyCondition, expressionValues, nil, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to query swipes by %s: %w", userID, err)
	}

	var actions []models.SwipeAction
	if err := attributevalue.UnmarshalListOfMaps(items, &actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal swipes: %w", err)
	}

	targets := make(map[string]bool, len(actions))
	for _, action := range actions {
		targets[action.SwipedID] = true
	}
	return targets, nil
}

// Matches returns the user's match records, each with the counterpart snapshot.
func (ss *SwipeService) Matches(ctx context.Context, userID string) ([]models.MatchRecord, error) {
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
		items, err := ss.Dynamo.QueryItemsWithIndex(ctx, models.MatchesTable, index.name, keyCondition, expressionValues, nil, 100)
		if err != nil {
			return nil, fmt.Errorf("failed to query matches for %s: %w", userID, err)
		}
		var side []models.MatchRecord
		if err := attributevalue.UnmarshalListOfMaps(items, &side); err != nil {
			return nil, fmt.Errorf("failed to unmarshal matches: %w", err)
		}
		records = append(records, side...)
	}

	for i := range records {
		snapshot, err := ss.Profiles.Snapshot(ctx, records[i].Other(userID))
		if err != nil {
			log.Printf("⚠️ Missing counterpart snapshot for %s: %v", records[i].PairKey, err)
			continue
		}
		records[i].Counterpart = &snapshot
	}
	return records, nil
}
