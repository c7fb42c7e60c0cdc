package handlers

import (
	"testing"
	"time"

	"vivaah/models"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func dob(age int) time.Time {
	return time.Date(testNow.Year()-age, time.January, 10, 0, 0, 0, 0, time.UTC)
}

func TestAgeAt(t *testing.T) {
	born := time.Date(1995, time.June, 20, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, ageAt(born, time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 29, ageAt(born, time.Date(2026, time.June, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 30, ageAt(born, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRequestCompatibilityAllFactorsMatch(t *testing.T) {
	a := compatFields{
		Education:         "Masters",
		Location:          "Mumbai",
		ProfileCreatedFor: "self",
		DateOfBirth:       dob(28),
	}
	b := compatFields{
		Education:         "Masters",
		Location:          "mumbai",
		ProfileCreatedFor: "self",
		DateOfBirth:       dob(29),
	}

	// Four factors each contributing 25: the averaged score is 25.
	assert.Equal(t, 25, requestCompatibility(a, b, testNow))
}

func TestRequestCompatibilityPartialFactors(t *testing.T) {
	// Only the age factor applies: diff of 1 year scores 25 over 1 factor.
	a := compatFields{DateOfBirth: dob(30)}
	b := compatFields{DateOfBirth: dob(31)}
	assert.Equal(t, 25, requestCompatibility(a, b, testNow))

	// Age gap of 4 falls in the middle band.
	b.DateOfBirth = dob(34)
	assert.Equal(t, 15, requestCompatibility(a, b, testNow))

	// Age gap of 9 falls through to the floor.
	b.DateOfBirth = dob(39)
	assert.Equal(t, 5, requestCompatibility(a, b, testNow))
}

func TestRequestCompatibilityMixedFactors(t *testing.T) {
	// Education matches (25), location differs (0): average 13 after rounding.
	a := compatFields{Education: "B.Tech", Location: "Delhi"}
	b := compatFields{Education: "B.Tech", Location: "Pune"}
	assert.Equal(t, 13, requestCompatibility(a, b, testNow))
}

func TestRequestCompatibilityFactorNeedsBothSides(t *testing.T) {
	// One-sided fields never count as a factor, so only age applies here.
	a := compatFields{Education: "MBA", DateOfBirth: dob(27)}
	b := compatFields{DateOfBirth: dob(27)}
	assert.Equal(t, 25, requestCompatibility(a, b, testNow))
}

func TestRequestCompatibilityFallbackRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		score := requestCompatibility(compatFields{}, compatFields{}, testNow)
		assert.GreaterOrEqual(t, score, 60)
		assert.Less(t, score, 90)
	}
}

func TestRequestCompatibilityDeterministicWithFactors(t *testing.T) {
	a := compatFields{Education: "PhD", DateOfBirth: dob(33)}
	b := compatFields{Education: "PhD", DateOfBirth: dob(30)}

	first := requestCompatibility(a, b, testNow)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, requestCompatibility(a, b, testNow))
	}
}

func fullTestProfile(age int) *models.Profile {
	return &models.Profile{
		DateOfBirth:         dob(age),
		ReligiousDetails:    &models.ReligiousDetails{Religion: "Hindu"},
		FamilyDetails:       &models.FamilyDetails{CurrentResidenceCity: "Bengaluru"},
		EducationDetails:    &models.EducationDetails{HighestEducation: "Masters"},
		ProfessionalDetails: &models.ProfessionalDetails{Occupation: "Engineer"},
	}
}

func TestRecommendationCompatibilityCap(t *testing.T) {
	viewer := fullTestProfile(28)
	target := fullTestProfile(28)

	// 30 + 25 + 20 + 15 + 10 = 100, capped at 95.
	assert.Equal(t, 95, recommendationCompatibility(viewer, target, testNow))
}

func TestRecommendationCompatibilityWeights(t *testing.T) {
	viewer := fullTestProfile(28)

	// Religion + city match only, plus the close-age band and the
	// both-employed bonus.
	target := &models.Profile{
		DateOfBirth:         dob(30),
		ReligiousDetails:    &models.ReligiousDetails{Religion: "Hindu"},
		FamilyDetails:       &models.FamilyDetails{CurrentResidenceCity: "Bengaluru"},
		ProfessionalDetails: &models.ProfessionalDetails{Occupation: "Doctor"},
	}
	assert.Equal(t, 30+25+15+10, recommendationCompatibility(viewer, target, testNow))

	// Nothing in common beyond a distant age.
	stranger := &models.Profile{DateOfBirth: dob(45)}
	assert.Equal(t, 5, recommendationCompatibility(viewer, stranger, testNow))
}

func TestRecommendationCompatibilityAgeBands(t *testing.T) {
	viewer := &models.Profile{DateOfBirth: dob(30)}

	assert.Equal(t, 15, recommendationCompatibility(viewer, &models.Profile{DateOfBirth: dob(35)}, testNow))
	assert.Equal(t, 10, recommendationCompatibility(viewer, &models.Profile{DateOfBirth: dob(40)}, testNow))
	assert.Equal(t, 5, recommendationCompatibility(viewer, &models.Profile{DateOfBirth: dob(41)}, testNow))
}

func TestRecommendationCompatibilityNilProfiles(t *testing.T) {
	assert.Equal(t, 0, recommendationCompatibility(nil, fullTestProfile(28), testNow))
	assert.Equal(t, 0, recommendationCompatibility(fullTestProfile(28), nil, testNow))
}
