package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"vivaah/database"
	"vivaah/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const quickSearchLimit = 20

// GetAdminStats returns the header counters for the moderation console.
func GetAdminStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users, err := database.Users.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch stats"})
		return
	}
	profiles, err := database.Profiles.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch stats"})
		return
	}
	pendingPhotos, err := database.Profiles.CountDocuments(ctx, bson.M{"photos.status": models.PhotoPending})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch stats"})
		return
	}
	requests, err := database.Requests.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch stats"})
		return
	}
	conversations, err := database.Conversations.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"users":         users,
			"profiles":      profiles,
			"pendingPhotos": pendingPhotos,
			"requests":      requests,
			"conversations": conversations,
		},
	})
}

// ListUsers is the paginated admin user listing with role/active filters and
// a case-insensitive name/phone search.
func ListUsers(c *gin.Context) {
	query := bson.M{}
	if role := c.Query("role"); role != "" {
		query["role"] = role
	}
	if isActive := c.Query("isActive"); isActive != "" {
		query["isActive"] = isActive == "true"
	}
	if search := c.Query("search"); search != "" {
		re := primitive.Regex{Pattern: search, Options: "i"}
		query["$or"] = []bson.M{
			{"fullName": re},
			{"phoneNumber": re},
		}
	}

	page, limit := parsePagination(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := database.Users.Find(ctx, query, opts)
	if err != nil {
		log.Printf("[ListUsers] Find failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch users"})
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode users"})
		return
	}

	total, err := database.Users.CountDocuments(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to count users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   total,
		"page":    page,
		"limit":   limit,
		"pages":   totalPages(total, limit),
		"data":    users,
	})
}

func GetAdminUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

type AdminUserUpdate struct {
	Role     *string `json:"role" binding:"omitempty,oneof=user moderator admin"`
	IsActive *bool   `json:"isActive"`
	FullName *string `json:"fullName"`
	Avatar   *string `json:"avatar"`
}

// UpdateUser applies the allow-listed fields only; anything else in the body
// is ignored.
func UpdateUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var input AdminUserUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.Role != nil {
		set["role"] = *input.Role
	}
	if input.IsActive != nil {
		set["isActive"] = *input.IsActive
	}
	if input.FullName != nil {
		set["fullName"] = *input.FullName
	}
	if input.Avatar != nil {
		set["avatar"] = *input.Avatar
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"password": 0})

	var user models.User
	err = database.Users.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": set}, opts).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// DeleteUser soft-deletes: the document stays, isActive flips to false.
// Profiles and requests are left in place.
func DeleteUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err = database.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
		opts,
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to deactivate user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user, "message": "User deactivated"})
}

// ListAdminProfiles is the paginated moderation view over profiles with a
// verification filter and name/city search, user populated.
func ListAdminProfiles(c *gin.Context) {
	query := bson.M{}
	switch c.Query("status") {
	case "verified":
		query["isVerified"] = true
	case "unverified":
		query["isVerified"] = false
	}
	if search := c.Query("search"); search != "" {
		re := primitive.Regex{Pattern: search, Options: "i"}
		query["$or"] = []bson.M{
			{"fullName": re},
			{"familyDetails.currentResidenceCity": re},
		}
	}

	page, limit := parsePagination(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$user"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "user.password", Value: 0},
		}}},
	}

	cursor, err := database.Profiles.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("[ListAdminProfiles] Aggregate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch profiles"})
		return
	}
	defer cursor.Close(ctx)

	profiles := []bson.M{}
	if err := cursor.All(ctx, &profiles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode profiles"})
		return
	}

	total, err := database.Profiles.CountDocuments(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to count profiles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   total,
		"page":    page,
		"limit":   limit,
		"pages":   totalPages(total, limit),
		"data":    profiles,
	})
}

type VerifyProfileInput struct {
	IsVerified *bool `json:"isVerified" binding:"required"`
}

func VerifyProfile(c *gin.Context) {
	profileID, err := primitive.ObjectIDFromHex(c.Param("profileId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid profile ID"})
		return
	}

	var input VerifyProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var profile models.Profile
	err = database.Profiles.FindOneAndUpdate(ctx,
		bson.M{"_id": profileID},
		bson.M{"$set": bson.M{"isVerified": *input.IsVerified, "updatedAt": time.Now()}},
		opts,
	).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

type ModeratePhotoInput struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// ModeratePhoto approves or rejects a single embedded photo by id, as one
// atomic single-document update.
func ModeratePhoto(c *gin.Context) {
	profileID, err := primitive.ObjectIDFromHex(c.Param("profileId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid profile ID"})
		return
	}
	photoID, err := primitive.ObjectIDFromHex(c.Param("photoId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid photo ID"})
		return
	}

	var input ModeratePhotoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var profile models.Profile
	err = database.Profiles.FindOneAndUpdate(ctx,
		bson.M{"_id": profileID, "photos._id": photoID},
		bson.M{"$set": bson.M{"photos.$.status": input.Status, "updatedAt": time.Now()}},
		opts,
	).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		// Distinguish a missing profile from a missing photo for the caller.
		count, countErr := database.Profiles.CountDocuments(ctx, bson.M{"_id": profileID})
		if countErr == nil && count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Profile not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Photo not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to moderate photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

// ListAdminRequests is the paginated request overview with an optional
// status filter, both parties populated.
func ListAdminRequests(c *gin.Context) {
	query := bson.M{}
	if status := c.Query("status"); status != "" {
		query["status"] = status
	}

	page, limit := parsePagination(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
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
		log.Printf("[ListAdminRequests] Aggregate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch requests"})
		return
	}
	defer cursor.Close(ctx)

	requests := []bson.M{}
	if err := cursor.All(ctx, &requests); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode requests"})
		return
	}

	total, err := database.Requests.CountDocuments(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to count requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   total,
		"page":    page,
		"limit":   limit,
		"pages":   totalPages(total, limit),
		"data":    requests,
	})
}

// ListAdminConversations is the paginated conversation overview with
// participants and the last message populated.
func ListAdminConversations(c *gin.Context) {
	page, limit := parsePagination(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}}}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "participants"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "participants"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "messages"},
			{Key: "localField", Value: "lastMessage"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "lastMessageDoc"},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "unreadCount", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "updatedAt", Value: 1},
			{Key: "lastMessage", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$lastMessageDoc", 0}}}},
			{Key: "participants._id", Value: 1},
			{Key: "participants.fullName", Value: 1},
			{Key: "participants.avatar", Value: 1},
		}}},
	}

	cursor, err := database.Conversations.Aggregate(ctx, pipeline)
	if err != nil {
		log.Printf("[ListAdminConversations] Aggregate failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch conversations"})
		return
	}
	defer cursor.Close(ctx)

	conversations := []bson.M{}
	if err := cursor.All(ctx, &conversations); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode conversations"})
		return
	}

	total, err := database.Conversations.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to count conversations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   total,
		"page":    page,
		"limit":   limit,
		"pages":   totalPages(total, limit),
		"data":    conversations,
	})
}

// buildUsersCSV renders the export with RFC 4180 quoting: every value is
// double-quoted, embedded quotes doubled.
func buildUsersCSV(users []models.User) string {
	var b strings.Builder
	b.WriteString("Full Name,Phone,Role,Created At")
	for _, u := range users {
		row := []string{
			u.FullName,
			u.PhoneNumber,
			u.Role,
			u.CreatedAt.UTC().Format(time.RFC3339),
		}
		b.WriteString("\n")
		for i, v := range row {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(`"` + strings.ReplaceAll(v, `"`, `""`) + `"`)
		}
	}
	return b.String()
}

// ExportUsers streams the user roster as a CSV attachment.
func ExportUsers(c *gin.Context) {
	query := bson.M{}
	if role := c.Query("role"); role != "" {
		query["role"] = role
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := database.Users.Find(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch users"})
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode users"})
		return
	}

	filename := fmt.Sprintf("users_%d.csv", time.Now().Unix())
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.String(http.StatusOK, buildUsersCSV(users))
}

// QuickSearch is a cross-entity regex search: users by name/phone, profiles
// by name/city, each capped at the result limit.
func QuickSearch(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"users": []models.User{}, "profiles": []models.Profile{}},
		})
		return
	}

	re := primitive.Regex{Pattern: term, Options: "i"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userOpts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetLimit(quickSearchLimit)

	userCursor, err := database.Users.Find(ctx, bson.M{
		"$or": []bson.M{{"fullName": re}, {"phoneNumber": re}},
	}, userOpts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Search failed"})
		return
	}
	defer userCursor.Close(ctx)

	users := []models.User{}
	if err := userCursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Search failed"})
		return
	}

	profileCursor, err := database.Profiles.Find(ctx, bson.M{
		"$or": []bson.M{{"fullName": re}, {"familyDetails.currentResidenceCity": re}},
	}, options.Find().SetLimit(quickSearchLimit))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Search failed"})
		return
	}
	defer profileCursor.Close(ctx)

	profiles := []models.Profile{}
	if err := profileCursor.All(ctx, &profiles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"users": users, "profiles": profiles},
	})
}
