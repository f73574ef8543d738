package models

// UserProfile is the stored profile row. Only the fields this engine touches
// are modeled; display-only attributes stay opaque to it.
type UserProfile struct {
	UserID   string   `dynamodbav:"userId" json:"userId"` // Partition Key
	Name     string   `dynamodbav:"name" json:"name"`
	PhotoKey string   `dynamodbav:"photoKey,omitempty" json:"photoKey,omitempty"`
	Friends  []string `dynamodbav:"friends,omitempty" json:"friends,omitempty"`
}

// ProfileSnapshot is the denormalized counterpart view attached to matches,
// requests, and admirer listings.
type ProfileSnapshot struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

const UserProfilesTable = "UserProfiles"
