package models

import "time"

// RelationshipStatus is the stored state of a friend relationship
type RelationshipStatus string

const (
	RelationshipPending  RelationshipStatus = "pending"
	RelationshipAccepted RelationshipStatus = "accepted"
)

// Relationship is the single record allowed per unordered pair of users.
// PairLow and PairHigh hold the two identities in lexical order; the unique
// index over them is what keeps a second request out regardless of which
// side sends it. No DeletedAt column: cancel, reject and unfriend remove the
// row for good, so the pair index frees up immediately.
type Relationship struct {
	ID          uint               `json:"id" gorm:"primaryKey"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	RequesterID string             `json:"requester_id" gorm:"size:64;index"`
	TargetID    string             `json:"target_id" gorm:"size:64;index"`
	PairLow     string             `json:"-" gorm:"size:64;uniqueIndex:idx_relationship_pair"`
	PairHigh    string             `json:"-" gorm:"size:64;uniqueIndex:idx_relationship_pair"`
	Status      RelationshipStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`
}

// NormalizePair returns the unordered pair key for two user identities.
func NormalizePair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}
