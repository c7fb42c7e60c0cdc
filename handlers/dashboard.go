package handlers

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"time"

	"vivaah/database"
	"vivaah/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// profileCompletion scores how filled-in a profile is: base 20%, plus 13% per
// populated key field, capped at 100. A missing profile scores the base.
func profileCompletion(profile *models.Profile) int {
	completed := 20
	if profile == nil {
		return completed
	}

	checks := []bool{
		profile.PersonalDetails != nil && profile.PersonalDetails.HeightCm > 0,
		profile.ReligiousDetails != nil && profile.ReligiousDetails.Religion != "",
		profile.EducationDetails != nil && profile.EducationDetails.HighestEducation != "",
		profile.ProfessionalDetails != nil && profile.ProfessionalDetails.Occupation != "",
		profile.FamilyDetails != nil && profile.FamilyDetails.CurrentResidenceCity != "",
		profile.LifestylePreferences != nil && profile.LifestylePreferences.AboutMe != "",
	}
	for _, ok := range checks {
		if ok {
			completed += 13
		}
	}
	if completed > 100 {
		completed = 100
	}
	return completed
}

// oppositeGender implements the binary male/female matching rule. "other" is
// treated as male for matching purposes, mirroring the documented behavior.
func oppositeGender(gender string) string {
	if gender == "male" {
		return "female"
	}
	return "male"
}

// recommendationBaseCriteria is the shared match filter for the feed and the
// quick-filter counts: opposite gender, excluding the viewer.
func recommendationBaseCriteria(viewer *models.Profile) bson.M {
	return bson.M{
		"userId": bson.M{"$ne": viewer.UserID},
		"gender": oppositeGender(viewer.Gender),
	}
}

func dashboardStats(ctx context.Context, userID primitive.ObjectID) (gin.H, error) {
	// Profile views are not tracked yet; a placeholder number keeps the
	// dashboard tile populated.
	profileViews := rand.Intn(50) + 10

	interests, err := database.Requests.CountDocuments(ctx, bson.M{
		"receiver":  userID,
		"status":    models.RequestPending,
		"createdAt": bson.M{"$gte": time.Now().AddDate(0, 0, -30)},
	})
	if err != nil {
		return nil, err
	}

	unread, err := unreadMessagesCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches, err := database.Requests.CountDocuments(ctx, bson.M{
		"status": models.RequestAccepted,
		"$or": []bson.M{
			{"sender": userID},
			{"receiver": userID},
		},
	})
	if err != nil {
		return nil, err
	}

	pending, err := database.Requests.CountDocuments(ctx, bson.M{
		"receiver": userID,
		"status":   models.RequestPending,
	})
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	var completionInput *models.Profile
	err = database.Profiles.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err == nil {
		completionInput = &profile
	} else if err != mongo.ErrNoDocuments {
		return nil, err
	}

	return gin.H{
		"profileViews":      profileViews,
		"interests":         interests,
		"messages":          unread,
		"matches":           matches,
		"pendingRequests":   pending,
		"profileCompletion": profileCompletion(completionInput),
	}, nil
}

// unreadMessagesCount sums the caller's per-conversation unread counters.
func unreadMessagesCount(ctx context.Context, userID primitive.ObjectID) (int, error) {
	cursor, err := database.Conversations.Find(ctx, bson.M{"participants": userID})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var conversations []models.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return 0, err
	}

	total := 0
	for _, conv := range conversations {
		total += conv.UnreadCount[userID.Hex()]
	}
	return total, nil
}

// recommendedProfiles builds the feed: opposite-gender profiles, narrowed to
// the viewer's religion and city when their own profile sets them, joined
// with the owning user and scored for compatibility. Sorted by profile
// creation time, not by score.
func recommendedProfiles(ctx context.Context, viewer *models.Profile, page, limit int64) ([]gin.H, error) {
	criteria := recommendationBaseCriteria(viewer)
	if viewer.ReligiousDetails != nil && viewer.ReligiousDetails.Religion != "" {
		criteria["religiousDetails.religion"] = viewer.ReligiousDetails.Religion
	}
	if viewer.FamilyDetails != nil && viewer.FamilyDetails.CurrentResidenceCity != "" {
		criteria["familyDetails.currentResidenceCity"] = viewer.FamilyDetails.CurrentResidenceCity
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: criteria}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: (page - 1) * limit}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "userId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.D{
			{Key: "user.password", Value: 0},
			{Key: "user.phoneNumber", Value: 0},
		}}},
	}

	cursor, err := database.Profiles.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	type recommendedRow struct {
		models.Profile `bson:",inline"`
		User           bson.M `bson:"user"`
	}

	var rows []recommendedRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	now := time.Now()
	results := make([]gin.H, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		results = append(results, gin.H{
			"id":                   row.ID.Hex(),
			"userId":               row.UserID.Hex(),
			"fullName":             row.FullName,
			"gender":               row.Gender,
			"dateOfBirth":          row.DateOfBirth,
			"age":                  ageAt(row.DateOfBirth, now),
			"photos":               row.Photos,
			"personalDetails":      row.PersonalDetails,
			"religiousDetails":     row.ReligiousDetails,
			"educationDetails":     row.EducationDetails,
			"professionalDetails":  row.ProfessionalDetails,
			"familyDetails":        row.FamilyDetails,
			"lifestylePreferences": row.LifestylePreferences,
			"isVerified":           row.IsVerified,
			"createdAt":            row.CreatedAt,
			"user":                 row.User,
			"compatibility":        recommendationCompatibility(viewer, &row.Profile, now),
		})
	}
	return results, nil
}

// quickFilters returns the named facets with live counts under the base
// opposite-gender criteria. Facets that depend on an unset viewer field are
// omitted.
func quickFilters(ctx context.Context, viewer *models.Profile) ([]gin.H, error) {
	base := recommendationBaseCriteria(viewer)

	allCount, err := database.Profiles.CountDocuments(ctx, base)
	if err != nil {
		return nil, err
	}

	filters := []gin.H{
		{"id": "all", "name": "All Profiles", "icon": "Users", "count": allCount},
	}

	if viewer.ReligiousDetails != nil && viewer.ReligiousDetails.Religion != "" {
		criteria := recommendationBaseCriteria(viewer)
		criteria["religiousDetails.religion"] = viewer.ReligiousDetails.Religion
		count, err := database.Profiles.CountDocuments(ctx, criteria)
		if err != nil {
			return nil, err
		}
		filters = append(filters, gin.H{"id": "religion", "name": "Same Religion", "icon": "Star", "count": count})
	}

	if viewer.FamilyDetails != nil && viewer.FamilyDetails.CurrentResidenceCity != "" {
		criteria := recommendationBaseCriteria(viewer)
		criteria["familyDetails.currentResidenceCity"] = viewer.FamilyDetails.CurrentResidenceCity
		count, err := database.Profiles.CountDocuments(ctx, criteria)
		if err != nil {
			return nil, err
		}
		filters = append(filters, gin.H{"id": "city", "name": "Same City", "icon": "MapPin", "count": count})
	}

	if viewer.EducationDetails != nil && viewer.EducationDetails.HighestEducation != "" {
		criteria := recommendationBaseCriteria(viewer)
		criteria["educationDetails.highestEducation"] = viewer.EducationDetails.HighestEducation
		count, err := database.Profiles.CountDocuments(ctx, criteria)
		if err != nil {
			return nil, err
		}
		filters = append(filters, gin.H{"id": "education", "name": "Similar Education", "icon": "GraduationCap", "count": count})
	}

	return filters, nil
}

func quickActions() []gin.H {
	return []gin.H{
		{
			"id":          "complete-profile",
			"title":       "Complete Profile",
			"description": "Add more details to get better matches",
			"icon":        "UserCheck",
			"action":      "profile-setup",
			"priority":    "high",
		},
		{
			"id":          "view-requests",
			"title":       "View Requests",
			"description": "Check your connection requests",
			"icon":        "UserPlus",
			"action":      "requests",
			"priority":    "medium",
		},
		{
			"id":          "upgrade-membership",
			"title":       "Upgrade Membership",
			"description": "Get premium features",
			"icon":        "Crown",
			"action":      "membership",
			"priority":    "low",
		},
	}
}

// viewerProfile loads the caller's profile, or nil when they have none yet.
func viewerProfile(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	err := database.Profiles.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func GetDashboardStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := dashboardStats(ctx, userID)
	if err != nil {
		log.Printf("[GetDashboardStats] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

func GetRecommendedProfiles(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	page, limit := parsePagination(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, err := viewerProfile(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if viewer == nil {
		// No profile yet: nothing to recommend against.
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{}})
		return
	}

	profiles, err := recommendedProfiles(ctx, viewer, page, limit)
	if err != nil {
		log.Printf("[GetRecommendedProfiles] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch recommended profiles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": profiles})
}

func GetQuickFilters(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	viewer, err := viewerProfile(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Database error"})
		return
	}
	if viewer == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": []gin.H{}})
		return
	}

	filters, err := quickFilters(ctx, viewer)
	if err != nil {
		log.Printf("[GetQuickFilters] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch quick filters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": filters})
}

// GetDashboardData composes the stats, a short recommendation feed, the
// pending count, the quick filters, and the static quick actions.
func GetDashboardData(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	stats, err := dashboardStats(ctx, userID)
	if err != nil {
		log.Printf("[GetDashboardData] stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load dashboard data"})
		return
	}

	pending, err := database.Requests.CountDocuments(ctx, bson.M{
		"receiver": userID,
		"status":   models.RequestPending,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load dashboard data"})
		return
	}

	viewer, err := viewerProfile(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load dashboard data"})
		return
	}

	recommended := []gin.H{}
	filters := []gin.H{}
	if viewer != nil {
		recommended, err = recommendedProfiles(ctx, viewer, 1, 6)
		if err != nil {
			log.Printf("[GetDashboardData] recommended: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load dashboard data"})
			return
		}
		filters, err = quickFilters(ctx, viewer)
		if err != nil {
			log.Printf("[GetDashboardData] filters: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to load dashboard data"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"stats":               stats,
			"recommendedProfiles": recommended,
			"pendingRequests":     pending,
			"quickFilters":        filters,
			"quickActions":        quickActions(),
		},
	})
}
