package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"mingle_server/events"
	"mingle_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DefaultNotificationPageSize bounds each source fetch per refresh pass.
const DefaultNotificationPageSize = 25

// NotificationSource is one independent feed contributor. Fetch returns the
// most recent items relevant to the user, at most limit of them.
type NotificationSource interface {
	Kind() string
	Fetch(ctx context.Context, userID string, limit int32) ([]models.NotificationItem, error)
}

// feedState is the per-user in-memory aggregation result.
type feedState struct {
	refreshing bool
	items      []models.NotificationItem
	retained   map[string][]models.NotificationItem
	unread     int
}

// NotificationService merges independent event sources into one unified feed
// per user. Sources are fetched in parallel; a failing source keeps its items
// from the prior successful pass (stale-but-present beats empty). Read state
// is a per-user lastViewedAt watermark, not per-item records.
type NotificationService struct {
	Dynamo   DB
	Sources  []NotificationSource
	Events   *events.Emitter
	PageSize int32            // 0 means DefaultNotificationPageSize
	Clock    func() time.Time // nil means time.Now

	mu    sync.Mutex
	feeds map[string]*feedState
}

func (ns *NotificationService) now() time.Time {
	if ns.Clock != nil {
		return ns.Clock()
	}
	return time.Now()
}

func (ns *NotificationService) pageSize() int32 {
	if ns.PageSize > 0 {
		return ns.PageSize
	}
	return DefaultNotificationPageSize
}

func (ns *NotificationService) feed(userID string) *feedState {
	if ns.feeds == nil {
		ns.feeds = make(map[string]*feedState)
	}
	state, ok := ns.feeds[userID]
	if !ok {
		state = &feedState{retained: make(map[string][]models.NotificationItem)}
		ns.feeds[userID] = state
	}
	return state
}

type sourceResult struct {
	kind  string
	items []models.NotificationItem
	err   error
}

// Refresh re-aggregates the user's feed. Source fetches run concurrently and
// are joined before merging; per-source failures are logged and swallowed. A
// refresh requested while one is already in flight for the same user is a
// no-op returning the current snapshot.
func (ns *NotificationService) Refresh(ctx context.Context, userID string) ([]models.NotificationItem, error) {
	ns.mu.Lock()
	state := ns.feed(userID)
	if state.refreshing {
		snapshot := append([]models.NotificationItem(nil), state.items...)
		ns.mu.Unlock()
		return snapshot, nil
	}
	state.refreshing = true
	ns.mu.Unlock()

	defer func() {
		ns.mu.Lock()
		state.refreshing = false
		ns.mu.Unlock()
	}()

	results := make(chan sourceResult, len(ns.Sources))
	var wg sync.WaitGroup
	for _, source := range ns.Sources {
		wg.Add(1)
		go func(src NotificationSource) {
			defer wg.Done()
			items, err := src.Fetch(ctx, userID, ns.pageSize())
			results <- sourceResult{kind: src.Kind(), items: items, err: err}
		}(source)
	}
	wg.Wait()
	close(results)

	watermark, err := ns.loadWatermark(ctx, userID)
	if err != nil {
		return nil, err
	}

	ns.mu.Lock()
	defer ns.mu.Unlock()

	for result := range results {
		if result.err != nil {
			// The failing source contributes its previously retained items.
			if !models.IsTransient(result.err) {
				log.Printf("⚠️ Notification source %s failed: %v", result.kind, result.err)
			}
			continue
		}
		state.retained[result.kind] = result.items
	}

	seen := make(map[string]bool)
	merged := make([]models.NotificationItem, 0)
	for _, kind := range ns.sourceKinds() {
		for _, item := range state.retained[kind] {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			merged = append(merged, item)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp > merged[j].Timestamp
	})

	unread := 0
	for i := range merged {
		merged[i].IsRead = merged[i].Timestamp <= watermark
		if !merged[i].IsRead {
			unread++
		}
	}

	state.items = merged
	state.unread = unread
	if ns.Events != nil {
		ns.Events.Publish(events.TopicNotificationsChanged, userID)
	}
	return append([]models.NotificationItem(nil), merged...), nil
}

func (ns *NotificationService) sourceKinds() []string {
	kinds := make([]string, 0, len(ns.Sources))
	for _, source := range ns.Sources {
		kinds = append(kinds, source.Kind())
	}
	return kinds
}

// loadWatermark returns the user's lastViewedAt, or "" when never viewed.
func (ns *NotificationService) loadWatermark(ctx context.Context, userID string) (string, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	item, err := ns.Dynamo.GetItem(ctx, models.NotificationCursorsTable, key)
	if err != nil {
		return "", fmt.Errorf("failed to fetch notification cursor for %s: %w", userID, err)
	}
	if item == nil {
		return "", nil
	}

	var cursor models.NotificationCursor
	if err := attributevalue.UnmarshalMap(item, &cursor); err != nil {
		return "", fmt.Errorf("failed to unmarshal notification cursor: %w", err)
	}
	return cursor.LastViewedAt, nil
}

// MarkAllRead advances the watermark to now and flips every in-memory item.
func (ns *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	cursor := models.NotificationCursor{
		UserID:       userID,
		LastViewedAt: ns.now().UTC().Format(time.RFC3339),
	}
	if err := ns.Dynamo.PutItem(ctx, models.NotificationCursorsTable, cursor); err != nil {
		return fmt.Errorf("failed to store notification cursor: %w", err)
	}

	ns.mu.Lock()
	state := ns.feed(userID)
	for i := range state.items {
		state.items[i].IsRead = true
	}
	state.unread = 0
	ns.mu.Unlock()

	if ns.Events != nil {
		ns.Events.Publish(events.TopicNotificationsChanged, userID)
	}
	return nil
}

// MarkRead flips a single in-memory item to read.
func (ns *NotificationService) MarkRead(userID, itemID string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	state := ns.feed(userID)
	for i := range state.items {
		if state.items[i].ID == itemID && !state.items[i].IsRead {
			state.items[i].IsRead = true
			state.unread--
			return
		}
	}
}

// Remove drops a single item from the in-memory feed, decrementing the
// unread counter only when the removed item was unread.
func (ns *NotificationService) Remove(userID, itemID string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	state := ns.feed(userID)
	for i := range state.items {
		if state.items[i].ID != itemID {
			continue
		}
		if !state.items[i].IsRead {
			state.unread--
		}
		state.items = append(state.items[:i], state.items[i+1:]...)
		return
	}
}

// Filter partitions the in-memory feed by category without network access.
// "social" covers matches and friend requests; "events" covers joins,
// messages, and post replies; anything else returns the full feed.
func (ns *NotificationService) Filter(userID, category string) []models.NotificationItem {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	state := ns.feed(userID)

	var kinds map[string]bool
	switch category {
	case "social":
		kinds = map[string]bool{models.SourceMatch: true, models.SourceFriendRequest: true}
	case "events":
		kinds = map[string]bool{
			models.SourceEventJoin:    true,
			models.SourceEventMessage: true,
			models.SourcePostReply:    true,
		}
	default:
		return append([]models.NotificationItem(nil), state.items...)
	}

	var filtered []models.NotificationItem
	for _, item := range state.items {
		if kinds[item.SourceKind] {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Unread returns the user's current unread counter.
func (ns *NotificationService) Unread(userID string) int {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.feed(userID).unread
}
