package handlers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"vivaah/database"
	"vivaah/middleware"
	"vivaah/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
)

type RegisterRequest struct {
	FullName          string `json:"fullName" binding:"required"`
	PhoneNumber       string `json:"phoneNumber" binding:"required"`
	Gender            string `json:"gender" binding:"required,oneof=male female other"`
	DateOfBirth       string `json:"dateOfBirth" binding:"required"`
	ProfileCreatedFor string `json:"profileCreatedFor" binding:"required"`
	Password          string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// parseDate accepts the date-only and RFC3339 layouts clients send.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid date of birth"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Check phone number first so the caller gets a clean message; the
	// unique index still backstops concurrent registrations.
	var existing models.User
	err = database.Users.FindOne(ctx, bson.M{"phoneNumber": req.PhoneNumber}).Decode(&existing)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Phone number already registered"})
		return
	}
	if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to hash password"})
		return
	}

	now := time.Now()
	user := models.User{
		ID:                primitive.NewObjectID(),
		FullName:          req.FullName,
		PhoneNumber:       req.PhoneNumber,
		Gender:            req.Gender,
		DateOfBirth:       dob,
		ProfileCreatedFor: req.ProfileCreatedFor,
		PasswordHash:      string(hashed),
		Role:              models.RoleUser,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := database.Users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Phone number already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create user"})
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    user.Summary(),
	})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Users.FindOne(ctx, bson.M{"phoneNumber": req.PhoneNumber}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		// same message as a password mismatch to avoid user enumeration
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid phone number or password"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid phone number or password"})
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    user.Summary(),
	})
}

// Me returns the authenticated user's summary.
func Me(c *gin.Context) {
	user, ok := c.MustGet("user").(models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.Summary()})
}

// GoogleLogin verifies a Google ID token and finds-or-creates the account
// keyed on the email claim (used as the phone-number surrogate).
func GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload, err := idtoken.Validate(ctx, req.IDToken, os.Getenv("GOOGLE_CLIENT_ID"))
	if err != nil {
		log.Printf("[GoogleLogin] Token verification failed: %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid Google token"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid Google token"})
		return
	}

	var user models.User
	err = database.Users.FindOne(ctx, bson.M{"phoneNumber": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		log.Printf("[GoogleLogin] Creating new user for %s", email)

		// Google does not share phone number, gender, or birth date, so the
		// account starts with placeholders the user fills in later.
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(payload.Subject), bcrypt.DefaultCost)
		if hashErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create user"})
			return
		}

		now := time.Now()
		user = models.User{
			ID:                primitive.NewObjectID(),
			FullName:          name,
			PhoneNumber:       email,
			Gender:            "male",
			DateOfBirth:       time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
			ProfileCreatedFor: "self",
			PasswordHash:      string(hashed),
			Role:              models.RoleUser,
			Avatar:            picture,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}

		if _, err := database.Users.InsertOne(ctx, user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create user"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Database error"})
		return
	}

	token, err := middleware.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": map[string]interface{}{
			"id":          user.ID.Hex(),
			"fullName":    user.FullName,
			"phoneNumber": user.PhoneNumber,
		},
	})
}
