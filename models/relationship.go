package models

// RelationshipEdge is a directed friend-request/block record between two users.
// At most one edge exists per ordered (requesterId, addresseeId) pair.
type RelationshipEdge struct {
	RequesterID  string `dynamodbav:"requesterId" json:"requesterId"` // Partition Key
	AddresseeID  string `dynamodbav:"addresseeId" json:"addresseeId"` // Sort Key
	EdgeID       string `dynamodbav:"edgeId" json:"edgeId"`
	Status       string `dynamodbav:"status" json:"status"` // pending, accepted, declined, blocked
	FirstMessage string `dynamodbav:"firstMessage,omitempty" json:"firstMessage,omitempty"`
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt    string `dynamodbav:"updatedAt" json:"updatedAt"`
}

// RequestWithProfile is a pending request enriched with the requester's snapshot.
type RequestWithProfile struct {
	Edge      RelationshipEdge `json:"edge"`
	Requester ProfileSnapshot  `json:"requester"`
}

const RelationshipsTable = "Relationships"

// GSI for reverse lookups (requests received, blocked-by)
const AddresseeIndex = "addresseeId-index"

// GSI for responding to a request by its edgeId
const EdgeIndex = "edgeId-index"
