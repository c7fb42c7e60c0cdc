package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request statuses
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// Request is a directed connection proposal between two users. At most one
// request exists per unordered pair, enforced by a unique index on PairKey.
type Request struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sender        primitive.ObjectID `bson:"sender" json:"sender"`
	Receiver      primitive.ObjectID `bson:"receiver" json:"receiver"`
	PairKey       string             `bson:"pairKey" json:"-"`
	Status        string             `bson:"status" json:"status"`
	Compatibility int                `bson:"compatibility" json:"compatibility"` // computed once at creation
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PairKey is the order-independent identity of a two-user relationship,
// used for unique indexes on requests and conversations.
func PairKey(a, b primitive.ObjectID) string {
	ah, bh := a.Hex(), b.Hex()
	if ah > bh {
		ah, bh = bh, ah
	}
	return ah + ":" + bh
}
