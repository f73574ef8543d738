package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"mingle_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource feeds fixed items (or a fixed error) into the aggregator.
type stubSource struct {
	kind  string
	items []models.NotificationItem
	err   error
}

func (s *stubSource) Kind() string { return s.kind }

func (s *stubSource) Fetch(ctx context.Context, userID string, limit int32) ([]models.NotificationItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func item(kind, nativeID, timestamp, actor string) models.NotificationItem {
	return models.NotificationItem{
		ID:         models.NotificationID(kind, nativeID),
		SourceKind: kind,
		NativeID:   nativeID,
		Timestamp:  timestamp,
		ActorID:    actor,
	}
}

func TestRefreshMergesAndSortsNewestFirst(t *testing.T) {
	matches := &stubSource{kind: models.SourceMatch, items: []models.NotificationItem{
		item(models.SourceMatch, "m1", "2026-08-20T10:00:00Z", "bob"),
	}}
	requests := &stubSource{kind: models.SourceFriendRequest, items: []models.NotificationItem{
		item(models.SourceFriendRequest, "r1", "2026-08-20T12:00:00Z", "carol"),
		item(models.SourceFriendRequest, "r2", "2026-08-20T08:00:00Z", "dave"),
	}}
	service := &NotificationService{
		Dynamo:  newFakeDB(),
		Sources: []NotificationSource{matches, requests},
	}

	items, err := service.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "friendRequest#r1", items[0].ID)
	assert.Equal(t, "match#m1", items[1].ID)
	assert.Equal(t, "friendRequest#r2", items[2].ID)
	assert.Equal(t, 3, service.Unread("alice"))
}

func TestRefreshRetainsItemsWhenSourceFails(t *testing.T) {
	matches := &stubSource{kind: models.SourceMatch, items: []models.NotificationItem{
		item(models.SourceMatch, "m1", "2026-08-20T10:00:00Z", "bob"),
	}}
	requests := &stubSource{kind: models.SourceFriendRequest, items: []models.NotificationItem{
		item(models.SourceFriendRequest, "r1", "2026-08-20T12:00:00Z", "carol"),
	}}
	service := &NotificationService{
		Dynamo:  newFakeDB(),
		Sources: []NotificationSource{matches, requests},
	}
	ctx := context.Background()

	items, err := service.Refresh(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 2)

	// The request source goes down; its items survive from the prior pass
	requests.err = errors.New("throttled")
	matches.items = append(matches.items,
		item(models.SourceMatch, "m2", "2026-08-21T09:00:00Z", "eve"))

	items, err = service.Refresh(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "match#m2", items[0].ID)
	assert.Equal(t, "friendRequest#r1", items[1].ID)
	assert.Equal(t, "match#m1", items[2].ID)
}

func TestRefreshTransientFailureWithNoHistoryYieldsPartialFeed(t *testing.T) {
	matches := &stubSource{kind: models.SourceMatch, items: []models.NotificationItem{
		item(models.SourceMatch, "m1", "2026-08-20T10:00:00Z", "bob"),
	}}
	requests := &stubSource{kind: models.SourceFriendRequest, err: models.ErrTransientNetwork}
	service := &NotificationService{
		Dynamo:  newFakeDB(),
		Sources: []NotificationSource{matches, requests},
	}

	items, err := service.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "match#m1", items[0].ID)
}

func TestRefreshDeduplicatesByID(t *testing.T) {
	duplicate := item(models.SourceMatch, "m1", "2026-08-20T10:00:00Z", "bob")
	first := &stubSource{kind: models.SourceMatch, items: []models.NotificationItem{duplicate, duplicate}}
	service := &NotificationService{Dynamo: newFakeDB(), Sources: []NotificationSource{first}}

	items, err := service.Refresh(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestWatermarkSplitsReadAndUnread(t *testing.T) {
	source := &stubSource{kind: models.SourceMatch, items: []models.NotificationItem{
		item(models.SourceMatch, "old", "2026-08-19T10:00:00Z", "bob"),
		item(models.SourceMatch, "new", "2026-08-21T10:00:00Z", "carol"),
	}}
	viewedAt := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	service := &NotificationService{
		Dynamo:  newFakeDB(),
		Sources: []NotificationSource{source},
		Clock:   func() time.Time { return viewedAt },
	}
	ctx := context.Background()

	require.NoError(t, service.MarkAllRead(ctx, "alice"))

	items, err := service.Refresh(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[0].IsRead, "item after the watermark is unread")
	assert.True(t, items[1].IsRead, "item before the watermark is read")
	assert.Equal(t, 1, service.Unread("alice"))
}

func TestMarkAllReadFlipsFeed(t *testing.T) {
	source := &stubSource{kind: models.SourceMatch, items: []models.NotificationItem{
		item(models.SourceMatch, "m1", "2026-08-20T10:00:00Z", "bob"),
		item(models.SourceMatch, "m2", "2026-08-20T11:00:00Z", "carol"),
	}}
	service := &NotificationService{Dynamo: newFakeDB(), Sources: []NotificationSource{source}}
	ctx := context.Background()

	_, err := service.Refresh(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 2, service.Unread("alice"))

	require.NoError(t, service.MarkAllRead(ctx, "alice"))
	assert.Equal(t, 0, service.Unread("alice"))
	for _, it := range service.Filter("alice", "all") {
		assert.True(t, it.IsRead)
	}
}

func TestMarkReadAndRemoveAdjustUnread(t *testing.T) {
	source := &stubSource{kind: models.SourceMatch, items: []models.NotificationItem{
		item(models.SourceMatch, "m1", "2026-08-20T10:00:00Z", "bob"),
		item(models.SourceMatch, "m2", "2026-08-20T11:00:00Z", "carol"),
	}}
	service := &NotificationService{Dynamo: newFakeDB(), Sources: []NotificationSource{source}}

	_, err := service.Refresh(context.Background(), "alice")
	require.NoError(t, err)

	service.MarkRead("alice", "match#m1")
	assert.Equal(t, 1, service.Unread("alice"))

	// Marking the same item twice is a no-op
	service.MarkRead("alice", "match#m1")
	assert.Equal(t, 1, service.Unread("alice"))

	// Removing a read item leaves the counter alone
	service.Remove("alice", "match#m1")
	assert.Equal(t, 1, service.Unread("alice"))
	assert.Len(t, service.Filter("alice", "all"), 1)

	// Removing an unread item decrements it
	service.Remove("alice", "match#m2")
	assert.Equal(t, 0, service.Unread("alice"))
	assert.Empty(t, service.Filter("alice", "all"))
}

func TestFilterPartitionsByCategory(t *testing.T) {
	sources := []NotificationSource{
		&stubSource{kind: models.SourceMatch, items: []models.NotificationItem{
			item(models.SourceMatch, "m1", "2026-08-20T10:00:00Z", "bob"),
		}},
		&stubSource{kind: models.SourceFriendRequest, items: []models.NotificationItem{
			item(models.SourceFriendRequest, "r1", "2026-08-20T11:00:00Z", "carol"),
		}},
		&stubSource{kind: models.SourcePostReply, items: []models.NotificationItem{
			item(models.SourcePostReply, "p1", "2026-08-20T12:00:00Z", "dave"),
		}},
		&stubSource{kind: models.SourceEventJoin, items: []models.NotificationItem{
			item(models.SourceEventJoin, "e1", "2026-08-20T13:00:00Z", "eve"),
		}},
	}
	service := &NotificationService{Dynamo: newFakeDB(), Sources: sources}

	_, err := service.Refresh(context.Background(), "alice")
	require.NoError(t, err)

	social := service.Filter("alice", "social")
	require.Len(t, social, 2)
	for _, it := range social {
		assert.Contains(t, []string{models.SourceMatch, models.SourceFriendRequest}, it.SourceKind)
	}

	eventsFeed := service.Filter("alice", "events")
	require.Len(t, eventsFeed, 2)
	for _, it := range eventsFeed {
		assert.Contains(t, []string{models.SourcePostReply, models.SourceEventJoin, models.SourceEventMessage}, it.SourceKind)
	}

	assert.Len(t, service.Filter("alice", "all"), 4)
}

func TestFeedsAreIsolatedPerUser(t *testing.T) {
	source := &stubSource{kind: models.SourceMatch, items: []models.NotificationItem{
		item(models.SourceMatch, "m1", "2026-08-20T10:00:00Z", "bob"),
	}}
	service := &NotificationService{Dynamo: newFakeDB(), Sources: []NotificationSource{source}}

	_, err := service.Refresh(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, service.Unread("alice"))
	assert.Equal(t, 0, service.Unread("bob"))
	assert.Empty(t, service.Filter("bob", "all"))
}
