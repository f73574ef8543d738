package models

// MatchRecord is the canonical record of a reciprocal positive-swipe pair.
// At most one record exists per pair key; the store enforces uniqueness via a
// conditional insert, so two near-simultaneous opposite-order swipes converge
// on a single record.
type MatchRecord struct {
	PairKey   string `dynamodbav:"pairKey" json:"pairKey"` // Partition Key
	UserA     string `dynamodbav:"userA" json:"userA"`     // min(user pair)
	UserB     string `dynamodbav:"userB" json:"userB"`     // max(user pair)
	Type      string `dynamodbav:"type" json:"type"`       // dating, friends
	Matched   bool   `dynamodbav:"matched" json:"matched"`
	MatchedAt string `dynamodbav:"matchedAt" json:"matchedAt"`

	// Counterpart is attached at read time for the requesting user; it is not
	// persisted with the record.
	Counterpart *ProfileSnapshot `dynamodbav:"-" json:"counterpart,omitempty"`
}

// PairKey returns the canonical unordered key for two user IDs.
func PairKey(a, b string) string {
	if a < b {
		return a + "#" + b
	}
	return b + "#" + a
}

// Other returns the counterpart of userID within the match pair.
func (m MatchRecord) Other(userID string) string {
	if m.UserA == userID {
		return m.UserB
	}
	return m.UserA
}

const MatchesTable = "Matches"

// GSIs for per-user match listings (a user appears on exactly one side of the
// canonical pair)
const (
	UserAIndex = "userA-index"
	UserBIndex = "userB-index"
)
