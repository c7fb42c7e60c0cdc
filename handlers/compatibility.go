package handlers

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"vivaah/models"
)

// compatFields are the per-user inputs to request-time compatibility scoring,
// assembled from the user record and, when present, their profile.
type compatFields struct {
	Education         string
	Location          string
	ProfileCreatedFor string
	DateOfBirth       time.Time
}

// ageAt is the calendar age on the given day.
func ageAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// requestCompatibility scores two users at request creation. Each factor
// counts only when both sides carry the field; the result is the rounded
// average of applicable factors, capped at 95. With nothing to compare the
// score falls back to a pseudo-random value in [60, 90).
func requestCompatibility(a, b compatFields, now time.Time) int {
	score := 0
	factors := 0

	if a.Education != "" && b.Education != "" {
		factors++
		if a.Education == b.Education {
			score += 25
		}
	}

	if a.Location != "" && b.Location != "" {
		factors++
		if strings.EqualFold(a.Location, b.Location) {
			score += 25
		}
	}

	if !a.DateOfBirth.IsZero() && !b.DateOfBirth.IsZero() {
		factors++
		ageDiff := ageAt(a.DateOfBirth, now) - ageAt(b.DateOfBirth, now)
		if ageDiff < 0 {
			ageDiff = -ageDiff
		}
		switch {
		case ageDiff <= 2:
			score += 25
		case ageDiff <= 5:
			score += 15
		default:
			score += 5
		}
	}

	if a.ProfileCreatedFor != "" && b.ProfileCreatedFor != "" {
		factors++
		if a.ProfileCreatedFor == b.ProfileCreatedFor {
			score += 25
		}
	}

	if factors == 0 {
		return rand.Intn(30) + 60
	}

	avg := int(math.Round(float64(score) / float64(factors)))
	if avg > 95 {
		avg = 95
	}
	return avg
}

// recommendationCompatibility scores a candidate profile against the viewer's
// own profile for the dashboard feed. Weighted sum, capped at 95.
func recommendationCompatibility(viewer, target *models.Profile, now time.Time) int {
	if viewer == nil || target == nil {
		return 0
	}

	score := 0

	if viewer.ReligiousDetails != nil && viewer.ReligiousDetails.Religion != "" &&
		target.ReligiousDetails != nil && target.ReligiousDetails.Religion == viewer.ReligiousDetails.Religion {
		score += 30
	}

	if viewer.FamilyDetails != nil && viewer.FamilyDetails.CurrentResidenceCity != "" &&
		target.FamilyDetails != nil && target.FamilyDetails.CurrentResidenceCity == viewer.FamilyDetails.CurrentResidenceCity {
		score += 25
	}

	if viewer.EducationDetails != nil && viewer.EducationDetails.HighestEducation != "" &&
		target.EducationDetails != nil && target.EducationDetails.HighestEducation == viewer.EducationDetails.HighestEducation {
		score += 20
	}

	ageDiff := ageAt(viewer.DateOfBirth, now) - ageAt(target.DateOfBirth, now)
	if ageDiff < 0 {
		ageDiff = -ageDiff
	}
	switch {
	case ageDiff <= 5:
		score += 15
	case ageDiff <= 10:
		score += 10
	default:
		score += 5
	}

	if viewer.ProfessionalDetails != nil && viewer.ProfessionalDetails.Occupation != "" &&
		target.ProfessionalDetails != nil && target.ProfessionalDetails.Occupation != "" {
		score += 10
	}

	if score > 95 {
		score = 95
	}
	return score
}
