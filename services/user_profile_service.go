package services

import (
	"context"
	"fmt"
	"log"

	"mingle_server/models"
	"mingle_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UserProfileService reads profile rows and builds the denormalized snapshots
// attached to matches, requests, and admirer listings.
type UserProfileService struct {
	Dynamo DB
	S3     *S3Service // optional; when nil, snapshots carry the raw photo key
}

// GetProfile retrieves a raw profile item by user ID.
func (ps *UserProfileService) GetProfile(ctx context.Context, userID string) (map[string]types.AttributeValue, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	return ps.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
}

// Snapshot builds the counterpart snapshot for a user. Missing profiles yield
// a bare snapshot rather than an error so listings degrade gracefully.
func (ps *UserProfileService) Snapshot(ctx context.Context, userID string) (models.ProfileSnapshot, error) {
	snapshot := models.ProfileSnapshot{UserID: userID}

	item, err := ps.GetProfile(ctx, userID)
	if err != nil {
		return snapshot, fmt.Errorf("failed to fetch profile for %s: %w", userID, err)
	}
	if item == nil {
		return snapshot, nil
	}

	snapshot.Name = utils.ExtractString(item, "name")
	if photoKey := utils.ExtractString(item, "photoKey"); photoKey != "" {
		snapshot.PhotoURL = photoKey
		if ps.S3 != nil {
			url, err := ps.S3.GenerateReadURL(ctx, photoKey)
			if err != nil {
				// Presign failures degrade to the raw key; the photo stays fetchable.
				log.Printf("⚠️ Failed to presign photo for %s: %v", userID, err)
			} else {
				snapshot.PhotoURL = url
			}
		}
	}
	return snapshot, nil
}

// AddFriend appends friendID to the user's friends list.
func (ps *UserProfileService) AddFriend(ctx context.Context, userID, friendID string) error {
	updateExpression := "SET friends = list_append(if_not_exists(friends, :empty), :newItem)"
	_, err := ps.Dynamo.UpdateItem(ctx, models.UserProfilesTable, updateExpression,
		map[string]types.AttributeValue{"userId": &types.AttributeValueMemberS{Value: userID}},
		map[string]types.AttributeValue{
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":newItem": &types.AttributeValueMemberL{Value: []types.AttributeValue{
				&types.AttributeValueMemberS{Value: friendID},
			}},
		}, nil,
	)
	if err != nil {
		return fmt.Errorf("failed to add %s to friends list of %s: %w", friendID, userID, err)
	}
	return nil
}

// Friends returns snapshots for the user's friends list.
func (ps *UserProfileService) Friends(ctx context.Context, userID string) ([]models.ProfileSnapshot, error) {
	item, err := ps.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", userID, err)
	}
	if item == nil {
		return nil, fmt.Errorf("profile %s: %w", userID, models.ErrNotFound)
	}

	friendIDs := utils.ExtractStringList(item, "friends")
	snapshots := make([]models.ProfileSnapshot, 0, len(friendIDs))
	for _, friendID := range friendIDs {
		snapshot, err := ps.Snapshot(ctx, friendID)
		if err != nil {
			log.Printf("⚠️ Skipping friend %s: %v", friendID, err)
			continue
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}
