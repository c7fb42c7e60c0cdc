package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is immutable once created except for SeenBy appends on read.
type Message struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID   `bson:"conversationId" json:"conversationId"`
	Sender         primitive.ObjectID   `bson:"sender" json:"sender"`
	Text           string               `bson:"text" json:"text"`
	SeenBy         []primitive.ObjectID `bson:"seenBy" json:"seenBy"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
}
