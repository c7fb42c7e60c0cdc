package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation is a two-party channel, created lazily once a request between
// the participants has been accepted. UnreadCount is keyed by user id hex.
type Conversation struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	PairKey      string               `bson:"pairKey" json:"-"`
	LastMessage  *primitive.ObjectID  `bson:"lastMessage,omitempty" json:"lastMessage,omitempty"`
	UnreadCount  map[string]int       `bson:"unreadCount" json:"unreadCount"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
