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
)

type SendRequestInput struct {
	ReceiverID string `json:"receiverId" binding:"required"`
}

type UpdateRequestStatusInput struct {
	Status string `json:"status" binding:"required,oneof=accepted rejected"`
}

// compatFieldsForUser merges the user record with their profile, when one
// exists, into the inputs the request-time scorer needs.
func compatFieldsForUser(ctx context.Context, user models.User) compatFields {
	fields := compatFields{
		ProfileCreatedFor: user.ProfileCreatedFor,
		DateOfBirth:       user.DateOfBirth,
	}

	var profile models.Profile
	if err := database.Profiles.FindOne(ctx, bson.M{"userId": user.ID}).Decode(&profile); err == nil {
		if profile.EducationDetails != nil {
			fields.Education = profile.EducationDetails.HighestEducation
		}
		if profile.FamilyDetails != nil {
			fields.Location = profile.FamilyDetails.CurrentResidenceCity
		}
	}
	return fields
}

// SendRequest creates a pending connection request after the self, existence,
// and duplicate checks. The pre-check only picks the right error message; the
// unique pairKey index is what actually prevents duplicates under races.
func SendRequest(c *gin.Context) {
	senderID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input SendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Receiver ID is required"})
		return
	}

	receiverID, err := primitive.ObjectIDFromHex(input.ReceiverID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid receiver ID"})
		return
	}

	if senderID == receiverID {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "You cannot send request to yourself"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var sender, receiver models.User
	if err := database.Users.FindOne(ctx, bson.M{"_id": senderID}).Decode(&sender); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}
	if err := database.Users.FindOne(ctx, bson.M{"_id": receiverID}).Decode(&receiver); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	// One request per unordered pair, checked in both directions.
	var existing models.Request
	err = database.Requests.FindOne(ctx, bson.M{
		"$or": []bson.M{
			{"sender": senderID, "receiver": receiverID},
			{"sender": receiverID, "receiver": senderID},
		},
	}).Decode(&existing)
	if err == nil {
		if existing.Sender == senderID {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Request already sent"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "This user has already sent you a request"})
		}
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	compatibility := requestCompatibility(
		compatFieldsForUser(ctx, sender),
		compatFieldsForUser(ctx, receiver),
		time.Now(),
	)

	now := time.Now()
	request := models.Request{
		ID:            primitive.NewObjectID(),
		Sender:        senderID,
		Receiver:      receiverID,
		PairKey:       models.PairKey(senderID, receiverID),
		Status:        models.RequestPending,
		Compatibility: compatibility,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := database.Requests.InsertOne(ctx, request); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost a race with a concurrent send for the same pair.
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Request already sent"})
			return
		}
		log.Printf("[SendRequest] Insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to send request"})
		return
	}

	data := gin.H{
		"id":            request.ID.Hex(),
		"status":        request.Status,
		"compatibility": request.Compatibility,
		"createdAt":     request.CreatedAt,
		"sender":        sender.Summary(),
		"receiver":      receiver.Summary(),
	}

	if wsManager != nil {
		wsManager.NotifyRequestReceived(receiverID.Hex(), data)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Request sent successfully",
		"data":    data,
	})
}

// requestsWithUsers lists requests matching the filter, newest first, with
// sender and receiver populated from the users collection.
func requestsWithUsers(ctx context.Context, filter bson.M) ([]bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "sender"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "sender"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$sender"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "receiver"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "receiver"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$receiver"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "sender.password", Value: 0},
			{Key: "receiver.password", Value: 0},
		}}},
	}

	cursor, err := database.Requests.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []bson.M{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func GetReceivedRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requests, err := requestsWithUsers(ctx, bson.M{"receiver": userID})
	if err != nil {
		log.Printf("[GetReceivedRequests] Aggregate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": requests, "count": len(requests)})
}

func GetSentRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requests, err := requestsWithUsers(ctx, bson.M{"sender": userID})
	if err != nil {
		log.Printf("[GetSentRequests] Aggregate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": requests, "count": len(requests)})
}

// UpdateRequestStatus accepts or rejects a pending request. Only the receiver
// may decide.
func UpdateRequestStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("requestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request ID"})
		return
	}

	var input UpdateRequestStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid status. Must be 'accepted' or 'rejected'"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var request models.Request
	err = database.Requests.FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Request not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	if request.Receiver != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not authorized to update this request"})
		return
	}

	_, err = database.Requests.UpdateOne(ctx,
		bson.M{"_id": requestID},
		bson.M{"$set": bson.M{"status": input.Status, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update request"})
		return
	}

	request.Status = input.Status
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Request " + input.Status + " successfully",
		"data":    request,
	})
}

// DeleteRequest hard-deletes a request. Either party may remove it.
func DeleteRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	requestID, err := primitive.ObjectIDFromHex(c.Param("requestId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var request models.Request
	err = database.Requests.FindOne(ctx, bson.M{"_id": requestID}).Decode(&request)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Request not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	if request.Sender != userID && request.Receiver != userID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Not authorized to delete this request"})
		return
	}

	if _, err := database.Requests.DeleteOne(ctx, bson.M{"_id": requestID}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Request deleted successfully"})
}

// GetRequestStats returns received/sent/pending counts without fetching rows.
func GetRequestStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	received, err := database.Requests.CountDocuments(ctx, bson.M{"receiver": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to count requests"})
		return
	}
	sent, err := database.Requests.CountDocuments(ctx, bson.M{"sender": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to count requests"})
		return
	}
	pending, err := database.Requests.CountDocuments(ctx, bson.M{"receiver": userID, "status": models.RequestPending})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to count requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"received": received,
			"sent":     sent,
			"pending":  pending,
		},
	})
}

// acceptedConnectionIDs returns the other party of every accepted request the
// user participates in, deduplicated.
func acceptedConnectionIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := database.Requests.Find(ctx, bson.M{
		"status": models.RequestAccepted,
		"$or": []bson.M{
			{"sender": userID},
			{"receiver": userID},
		},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.Request
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}

	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, req := range requests {
		other := req.Sender
		if other == userID {
			other = req.Receiver
		}
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids, nil
}

// GetAcceptedConnections lists the users the caller is connected to.
func GetAcceptedConnections(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ids, err := acceptedConnectionIDs(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch connections"})
		return
	}

	connections := []gin.H{}
	if len(ids) > 0 {
		cursor, err := database.Users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch connections"})
			return
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode connections"})
			return
		}

		for _, u := range users {
			avatar := u.Avatar
			if avatar == "" {
				avatar = fallbackAvatar
			}
			connections = append(connections, gin.H{
				"id":       u.ID.Hex(),
				"fullName": u.FullName,
				"avatar":   avatar,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": connections, "count": len(connections)})
}
