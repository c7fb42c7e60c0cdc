package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"vivaah/database"
	"vivaah/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StartConversationInput struct {
	UserB string `json:"userB" binding:"required"`
}

type SendMessageInput struct {
	ConversationID string `json:"conversationId" binding:"required"`
	Text           string `json:"text" binding:"required"`
}

// hasAcceptedRequest reports whether an accepted request exists between the
// two users in either direction.
func hasAcceptedRequest(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	count, err := database.Requests.CountDocuments(ctx, bson.M{
		"status": models.RequestAccepted,
		"$or": []bson.M{
			{"sender": a, "receiver": b},
			{"sender": b, "receiver": a},
		},
	})
	return count > 0, err
}

// StartConversation finds or creates the two-party conversation. Messaging is
// gated on an accepted connection. Find-or-create runs as a single upsert on
// the unique pairKey, so concurrent first messages converge on one document.
func StartConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input StartConversationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	otherID, err := primitive.ObjectIDFromHex(input.UserB)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	if otherID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cannot start a conversation with yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connected, err := hasAcceptedRequest(ctx, userID, otherID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	if !connected {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "You can only message accepted connections"})
		return
	}

	pairKey := models.PairKey(userID, otherID)
	now := time.Now()

	result, err := database.Conversations.UpdateOne(ctx,
		bson.M{"pairKey": pairKey},
		bson.M{"$setOnInsert": bson.M{
			"participants": []primitive.ObjectID{userID, otherID},
			"unreadCount":  map[string]int{},
			"createdAt":    now,
			"updatedAt":    now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create conversation"})
		return
	}

	var conversation models.Conversation
	if err := database.Conversations.FindOne(ctx, bson.M{"pairKey": pairKey}).Decode(&conversation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	if result.UpsertedCount == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": conversation})
		return
	}

	if wsManager != nil {
		wsManager.NotifyConversationCreated(otherID.Hex(), conversation)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": conversation})
}

// GetConversations lists the caller's conversations, restricted to partners
// from the accepted-connection set and newest activity first.
func GetConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	acceptedIDs, err := acceptedConnectionIDs(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch connections"})
		return
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "participants", Value: bson.D{
				{Key: "$all", Value: bson.A{userID}},
				{Key: "$in", Value: acceptedIDs},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "participants"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "participantsProfiles"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "partner", Value: bson.D{
				{Key: "$arrayElemAt", Value: bson.A{
					bson.D{{Key: "$filter", Value: bson.D{
						{Key: "input", Value: "$participantsProfiles"},
						{Key: "as", Value: "p"},
						{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$p._id", userID}}}},
					}}},
					0,
				}},
			}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "messages"},
			{Key: "localField", Value: "lastMessage"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "lastMessageDoc"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "unreadCount", Value: 1},
			{Key: "updatedAt", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "lastMessage", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$lastMessageDoc", 0}}}},
			{Key: "partner", Value: bson.D{
				{Key: "id", Value: "$partner._id"},
				{Key: "fullName", Value: "$partner.fullName"},
				{Key: "avatar", Value: "$partner.avatar"},
			}},
		}}},
	}

	cursor, err := database.Conversations.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("[GetConversations] Aggregate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch conversations"})
		return
	}
	defer cursor.Close(ctx)

	results := []bson.M{}
	if err := cursor.All(ctx, &results); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": results})
}

// SendMessage appends a message to a conversation, moves the lastMessage
// pointer, and increments the other participant's unread counter.
func SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(input.ConversationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid conversation ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var conversation models.Conversation
	err = database.Conversations.FindOne(ctx, bson.M{"_id": conversationID, "participants": userID}).Decode(&conversation)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Access denied to conversation"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	message := models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: conversationID,
		Sender:         userID,
		Text:           input.Text,
		SeenBy:         []primitive.ObjectID{userID},
		CreatedAt:      time.Now(),
	}

	if _, err := database.Messages.InsertOne(ctx, message); err != nil {
		log.Printf("[SendMessage] Insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to send message"})
		return
	}

	var recipient primitive.ObjectID
	for _, p := range conversation.Participants {
		if p != userID {
			recipient = p
			break
		}
	}

	update := bson.M{
		"$set": bson.M{
			"lastMessage": message.ID,
			"updatedAt":   time.Now(),
		},
	}
	if recipient != primitive.NilObjectID {
		update["$inc"] = bson.M{"unreadCount." + recipient.Hex(): 1}
	}

	if _, err := database.Conversations.UpdateOne(ctx, bson.M{"_id": conversationID}, update); err != nil {
		log.Printf("[SendMessage] Conversation update failed: %v", err)
	}

	if recipient != primitive.NilObjectID {
		if wsManager != nil {
			wsManager.NotifyNewMessage(recipient.Hex(), message)
		}
		go notifyPush(recipient, "New message", input.Text)
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": message})
}

// GetMessages marks everything in the conversation as seen by the caller and
// returns the full history in creation order.
func GetMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversationID, err := primitive.ObjectIDFromHex(c.Param("conversationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid conversation ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := database.Conversations.CountDocuments(ctx, bson.M{"_id": conversationID, "participants": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}
	if count == 0 {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Access denied to conversation"})
		return
	}

	_, err = database.Messages.UpdateMany(ctx,
		bson.M{"conversationId": conversationID, "seenBy": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"seenBy": userID}},
	)
	if err != nil {
		log.Printf("[GetMessages] Mark-seen failed: %v", err)
	}

	// Reading the conversation clears this user's unread counter.
	_, err = database.Conversations.UpdateOne(ctx,
		bson.M{"_id": conversationID},
		bson.M{"$set": bson.M{"unreadCount." + userID.Hex(): 0}},
	)
	if err != nil {
		log.Printf("[GetMessages] Unread reset failed: %v", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "conversationId", Value: conversationID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: 1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "sender"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "senderProfile"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$senderProfile"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "text", Value: 1},
			{Key: "sender", Value: 1},
			{Key: "seenBy", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "senderName", Value: "$senderProfile.fullName"},
			{Key: "senderAvatar", Value: "$senderProfile.avatar"},
		}}},
	}

	cursor, err := database.Messages.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("[GetMessages] Aggregate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch messages"})
		return
	}
	defer cursor.Close(ctx)

	messages := []bson.M{}
	if err := cursor.All(ctx, &messages); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": messages})
}
