package models

// SwipeAction is a single directional action in the append-only swipe ledger.
// A swiper may delete their own action ("undo") but never mutates direction in place.
type SwipeAction struct {
	SwiperID  string `dynamodbav:"swiperId" json:"swiperId"` // Partition Key
	SwipedID  string `dynamodbav:"swipedId" json:"swipedId"` // Sort Key
	Direction string `dynamodbav:"direction" json:"direction"` // left, right, up
	Type      string `dynamodbav:"type" json:"type"`           // dating, friends
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"`
}

// IsPositive reports whether this action signals interest.
func (s SwipeAction) IsPositive() bool {
	return IsPositiveDirection(s.Direction)
}

// DailyActionCounter tracks positive swipes for one user within the current
// local calendar day. ResetWatermark is the start of that day; the count is
// reset on first access after rollover.
type DailyActionCounter struct {
	UserID         string `dynamodbav:"userId" json:"userId"` // Partition Key
	Count          int    `dynamodbav:"count" json:"count"`
	ResetWatermark string `dynamodbav:"resetWatermark" json:"resetWatermark"`
}

const SwipesTable = "Swipes"
const SwipeCountersTable = "SwipeCounters"

// GSI for "who swiped on me" lookups
const SwipedIndex = "swipedId-index"
