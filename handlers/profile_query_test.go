package handlers

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildProfileQueryEmpty(t *testing.T) {
	query := buildProfileQuery(url.Values{}, testNow)
	assert.Empty(t, query)
}

func TestBuildProfileQueryFieldMapping(t *testing.T) {
	q := url.Values{}
	q.Set("gender", "female")
	q.Set("religion", "Hindu")
	q.Set("caste", "Brahmin")
	q.Set("city", "Pune")
	q.Set("state", "Maharashtra")
	q.Set("highestEducation", "Masters")
	q.Set("occupation", "Engineer")
	q.Set("diet", "vegetarian")
	q.Set("subscriptionTier", "premium")

	query := buildProfileQuery(q, testNow)

	assert.Equal(t, "female", query["gender"])
	assert.Equal(t, "Hindu", query["religiousDetails.religion"])
	assert.Equal(t, "Brahmin", query["religiousDetails.caste"])
	assert.Equal(t, "Pune", query["familyDetails.currentResidenceCity"])
	assert.Equal(t, "Maharashtra", query["familyDetails.currentResidenceState"])
	assert.Equal(t, "Masters", query["educationDetails.highestEducation"])
	assert.Equal(t, "Engineer", query["professionalDetails.occupation"])
	assert.Equal(t, "vegetarian", query["lifestylePreferences.diet"])
	assert.Equal(t, "premium", query["subscription.tier"])
	assert.NotContains(t, query, "personalDetails.maritalStatus")
}

func TestBuildProfileQueryBooleanFlags(t *testing.T) {
	q := url.Values{}
	q.Set("manglik", "true")
	q.Set("smoking", "false")
	q.Set("isVerified", "true")

	query := buildProfileQuery(q, testNow)

	assert.Equal(t, true, query["religiousDetails.manglik"])
	assert.Equal(t, false, query["lifestylePreferences.smoking"])
	assert.Equal(t, true, query["isVerified"])
}

func TestBuildProfileQueryHeightRange(t *testing.T) {
	q := url.Values{}
	q.Set("heightMin", "150")
	q.Set("heightMax", "180")

	query := buildProfileQuery(q, testNow)

	assert.Equal(t, bson.M{"$gte": 150, "$lte": 180}, query["personalDetails.heightCm"])
}

func TestBuildProfileQueryOpenEndedRange(t *testing.T) {
	q := url.Values{}
	q.Set("annualIncomeMin", "500000")

	query := buildProfileQuery(q, testNow)

	assert.Equal(t, bson.M{"$gte": 500000}, query["professionalDetails.annualIncomeMin"])
}

func TestBuildProfileQueryAgeRange(t *testing.T) {
	q := url.Values{}
	q.Set("ageMin", "25")
	q.Set("ageMax", "30")

	query := buildProfileQuery(q, testNow)

	dobRange, ok := query["dateOfBirth"].(bson.M)
	assert.True(t, ok)

	// The oldest accepted age bounds the earliest birth date, the youngest
	// the latest. An exact 25- or 30-year-old must satisfy both bounds.
	earliest := time.Date(testNow.Year()-30, testNow.Month(), testNow.Day(), 0, 0, 0, 0, time.UTC)
	latest := time.Date(testNow.Year()-25, testNow.Month(), testNow.Day(), 0, 0, 0, 0, time.UTC)
	assert.Equal(t, earliest, dobRange["$gte"])
	assert.Equal(t, latest, dobRange["$lte"])
	assert.True(t, earliest.Before(latest))
}

func TestBuildProfileQueryInvalidNumbersIgnored(t *testing.T) {
	q := url.Values{}
	q.Set("heightMin", "tall")
	q.Set("ageMax", "thirty")

	query := buildProfileQuery(q, testNow)

	assert.NotContains(t, query, "personalDetails.heightCm")
	assert.NotContains(t, query, "dateOfBirth")
}

func TestParseSortDefaults(t *testing.T) {
	sort := parseSort(url.Values{})
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, sort)
}

func TestParseSortExplicit(t *testing.T) {
	q := url.Values{}
	q.Set("sortBy", "updatedAt")
	q.Set("sortOrder", "asc")

	assert.Equal(t, bson.D{{Key: "updatedAt", Value: 1}}, parseSort(q))
}
