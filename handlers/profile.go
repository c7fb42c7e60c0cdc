package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"vivaah/database"
	"vivaah/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProfileInput struct {
	FullName             string                       `json:"fullName"`
	Gender               string                       `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth          string                       `json:"dateOfBirth"`
	ProfileCreatedFor    string                       `json:"profileCreatedFor"`
	PersonalDetails      *models.PersonalDetails      `json:"personalDetails"`
	ReligiousDetails     *models.ReligiousDetails     `json:"religiousDetails"`
	EducationDetails     *models.EducationDetails     `json:"educationDetails"`
	ProfessionalDetails  *models.ProfessionalDetails  `json:"professionalDetails"`
	FamilyDetails        *models.FamilyDetails        `json:"familyDetails"`
	LifestylePreferences *models.LifestylePreferences `json:"lifestylePreferences"`
	Subscription         *models.Subscription         `json:"subscription"`
}

// SaveProfile creates or updates the caller's profile. Provided nested groups
// replace the stored group wholesale; omitted fields are left untouched.
func SaveProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if input.FullName != "" {
		set["fullName"] = input.FullName
	}
	if input.Gender != "" {
		set["gender"] = input.Gender
	}
	if input.DateOfBirth != "" {
		dob, err := parseDate(input.DateOfBirth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid date of birth"})
			return
		}
		set["dateOfBirth"] = dob
	}
	if input.ProfileCreatedFor != "" {
		set["profileCreatedFor"] = input.ProfileCreatedFor
	}
	if input.PersonalDetails != nil {
		set["personalDetails"] = input.PersonalDetails
	}
	if input.ReligiousDetails != nil {
		set["religiousDetails"] = input.ReligiousDetails
	}
	if input.EducationDetails != nil {
		set["educationDetails"] = input.EducationDetails
	}
	if input.ProfessionalDetails != nil {
		set["professionalDetails"] = input.ProfessionalDetails
	}
	if input.FamilyDetails != nil {
		set["familyDetails"] = input.FamilyDetails
	}
	if input.LifestylePreferences != nil {
		set["lifestylePreferences"] = input.LifestylePreferences
	}
	if input.Subscription != nil {
		set["subscription"] = input.Subscription
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"userId":     userID,
			"photos":     []models.Photo{},
			"isVerified": false,
			"createdAt":  time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var profile models.Profile
	err := database.Profiles.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&profile)
	if err != nil {
		log.Printf("[SaveProfile] Upsert failed for user %s: %v", userID.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile saved successfully",
		"data":    profile,
	})
}

// GetProfile fetches a profile by its document id. Public endpoint.
func GetProfile(c *gin.Context) {
	profileID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid profile ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var profile models.Profile
	err = database.Profiles.FindOne(ctx, bson.M{"_id": profileID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

// GetMyProfile fetches the caller's profile.
func GetMyProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var profile models.Profile
	err := database.Profiles.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

// ListProfiles is the public discovery listing with filters, pagination, and
// sorting.
func ListProfiles(c *gin.Context) {
	query := buildProfileQuery(c.Request.URL.Query(), time.Now())
	page, limit := parsePagination(c)
	sort := parseSort(c.Request.URL.Query())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(sort).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := database.Profiles.Find(ctx, query, opts)
	if err != nil {
		log.Printf("[ListProfiles] Find failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch profiles"})
		return
	}
	defer cursor.Close(ctx)

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to decode profiles"})
		return
	}

	total, err := database.Profiles.CountDocuments(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to count profiles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   total,
		"page":    page,
		"limit":   limit,
		"pages":   totalPages(total, limit),
		"count":   len(profiles),
		"data":    profiles,
	})
}

// DeleteProfile removes the caller's profile. The user account stays.
func DeleteProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := database.Profiles.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete profile"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Profile not found or already deleted"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile deleted successfully"})
}

// UploadPhoto pushes a photo to Cloudinary and appends it to the caller's
// profile in pending state for moderation.
func UploadPhoto(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Failed to parse form data"})
		return
	}

	photoFile, _, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No photo file provided"})
		return
	}
	defer photoFile.Close()

	cld, err := cloudinary.NewFromURL(os.Getenv("CLOUDINARY_URL"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Cloudinary configuration error"})
		return
	}

	uploadParams := uploader.UploadParams{
		Folder:         "vivaah/photos",
		PublicID:       userID.Hex() + "_" + time.Now().Format("20060102150405"),
		Transformation: "c_limit,w_800,h_800,q_auto",
	}

	uploadResult, err := cld.Upload.Upload(ctx, photoFile, uploadParams)
	if err != nil {
		log.Printf("[UploadPhoto] Cloudinary upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to upload photo"})
		return
	}

	photo := models.Photo{
		ID:       primitive.NewObjectID(),
		PhotoURL: uploadResult.SecureURL,
		Status:   models.PhotoPending,
	}

	result, err := database.Profiles.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$push": bson.M{"photos": photo},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save photo"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": photo})
}
