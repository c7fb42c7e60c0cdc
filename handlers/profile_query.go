package handlers

import (
	"net/url"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// buildProfileQuery turns the enumerated filter keys of the public profile
// listing into a conjunctive Mongo query. Absent or unrecognized keys are
// simply omitted. The clock is a parameter so the age translation is
// deterministic under test.
func buildProfileQuery(q url.Values, now time.Time) bson.M {
	query := bson.M{}

	// Basic
	if v := q.Get("gender"); v != "" {
		query["gender"] = v
	}
	if v := q.Get("maritalStatus"); v != "" {
		query["personalDetails.maritalStatus"] = v
	}
	if v := q.Get("motherTongue"); v != "" {
		query["personalDetails.motherTongue"] = v
	}

	// Religion & community
	if v := q.Get("religion"); v != "" {
		query["religiousDetails.religion"] = v
	}
	if v := q.Get("caste"); v != "" {
		query["religiousDetails.caste"] = v
	}
	if v := q.Get("subCaste"); v != "" {
		query["religiousDetails.subCaste"] = v
	}
	if v := q.Get("manglik"); v != "" {
		query["religiousDetails.manglik"] = v == "true"
	}

	// Family & location
	if v := q.Get("city"); v != "" {
		query["familyDetails.currentResidenceCity"] = v
	}
	if v := q.Get("state"); v != "" {
		query["familyDetails.currentResidenceState"] = v
	}
	if v := q.Get("familyType"); v != "" {
		query["familyDetails.familyType"] = v
	}

	// Education & career
	if v := q.Get("highestEducation"); v != "" {
		query["educationDetails.highestEducation"] = v
	}
	if v := q.Get("educationField"); v != "" {
		query["educationDetails.educationField"] = v
	}
	if v := q.Get("occupation"); v != "" {
		query["professionalDetails.occupation"] = v
	}

	// Income range on the minimum-income field
	if incomeRange := rangeQuery(q.Get("annualIncomeMin"), q.Get("annualIncomeMax")); incomeRange != nil {
		query["professionalDetails.annualIncomeMin"] = incomeRange
	}

	// Height range
	if heightRange := rangeQuery(q.Get("heightMin"), q.Get("heightMax")); heightRange != nil {
		query["personalDetails.heightCm"] = heightRange
	}

	// Age range, translated to a date-of-birth range (inclusive bounds)
	if dobRange := dobRangeFromAges(q.Get("ageMin"), q.Get("ageMax"), now); dobRange != nil {
		query["dateOfBirth"] = dobRange
	}

	// Lifestyle
	if v := q.Get("diet"); v != "" {
		query["lifestylePreferences.diet"] = v
	}
	if v := q.Get("smoking"); v != "" {
		query["lifestylePreferences.smoking"] = v == "true"
	}
	if v := q.Get("drinking"); v != "" {
		query["lifestylePreferences.drinking"] = v == "true"
	}

	// Verification & subscription
	if v := q.Get("isVerified"); v != "" {
		query["isVerified"] = v == "true"
	}
	if v := q.Get("subscriptionTier"); v != "" {
		query["subscription.tier"] = v
	}

	return query
}

// rangeQuery builds a $gte/$lte clause from optional numeric strings, or nil
// when neither parses.
func rangeQuery(minStr, maxStr string) bson.M {
	clause := bson.M{}
	if min, err := strconv.Atoi(minStr); err == nil && minStr != "" {
		clause["$gte"] = min
	}
	if max, err := strconv.Atoi(maxStr); err == nil && maxStr != "" {
		clause["$lte"] = max
	}
	if len(clause) == 0 {
		return nil
	}
	return clause
}

// dobRangeFromAges maps an age window onto birth dates: the oldest accepted
// age fixes the earliest birth date and vice versa.
func dobRangeFromAges(ageMinStr, ageMaxStr string, now time.Time) bson.M {
	clause := bson.M{}
	if ageMax, err := strconv.Atoi(ageMaxStr); err == nil && ageMaxStr != "" {
		clause["$gte"] = time.Date(now.Year()-ageMax, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if ageMin, err := strconv.Atoi(ageMinStr); err == nil && ageMinStr != "" {
		clause["$lte"] = time.Date(now.Year()-ageMin, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if len(clause) == 0 {
		return nil
	}
	return clause
}

// parseSort reads sortBy/sortOrder with the createdAt-descending default.
func parseSort(q url.Values) bson.D {
	sortBy := q.Get("sortBy")
	if sortBy == "" {
		sortBy = "createdAt"
	}
	order := -1
	if q.Get("sortOrder") == "asc" {
		order = 1
	}
	return bson.D{{Key: sortBy, Value: order}}
}
