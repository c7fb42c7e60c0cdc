package handlers

import (
	"testing"

	"vivaah/models"

	"github.com/stretchr/testify/assert"
)

func TestProfileCompletionMissingProfile(t *testing.T) {
	assert.Equal(t, 20, profileCompletion(nil))
}

func TestProfileCompletionEmptyProfile(t *testing.T) {
	assert.Equal(t, 20, profileCompletion(&models.Profile{}))
}

func TestProfileCompletionPartial(t *testing.T) {
	profile := &models.Profile{
		PersonalDetails:  &models.PersonalDetails{HeightCm: 170},
		ReligiousDetails: &models.ReligiousDetails{Religion: "Hindu"},
	}
	assert.Equal(t, 20+2*13, profileCompletion(profile))
}

func TestProfileCompletionFull(t *testing.T) {
	profile := &models.Profile{
		PersonalDetails:      &models.PersonalDetails{HeightCm: 165},
		ReligiousDetails:     &models.ReligiousDetails{Religion: "Muslim"},
		EducationDetails:     &models.EducationDetails{HighestEducation: "Bachelors"},
		ProfessionalDetails:  &models.ProfessionalDetails{Occupation: "Architect"},
		FamilyDetails:        &models.FamilyDetails{CurrentResidenceCity: "Hyderabad"},
		LifestylePreferences: &models.LifestylePreferences{AboutMe: "Hello"},
	}
	assert.Equal(t, 98, profileCompletion(profile))
}

func TestProfileCompletionEmptyGroupFieldsDoNotCount(t *testing.T) {
	// Group structs present but key fields empty score nothing.
	profile := &models.Profile{
		PersonalDetails:  &models.PersonalDetails{MaritalStatus: "never_married"},
		ReligiousDetails: &models.ReligiousDetails{Caste: "Nair"},
	}
	assert.Equal(t, 20, profileCompletion(profile))
}

func TestOppositeGender(t *testing.T) {
	assert.Equal(t, "female", oppositeGender("male"))
	assert.Equal(t, "male", oppositeGender("female"))
	assert.Equal(t, "male", oppositeGender("other"))
}

func TestQuickActionsAreStatic(t *testing.T) {
	actions := quickActions()
	assert.Len(t, actions, 3)

	ids := make([]string, 0, len(actions))
	for _, a := range actions {
		ids = append(ids, a["id"].(string))
	}
	assert.Equal(t, []string{"complete-profile", "view-requests", "upgrade-membership"}, ids)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, int64(0), totalPages(0, 20))
	assert.Equal(t, int64(1), totalPages(1, 20))
	assert.Equal(t, int64(1), totalPages(20, 20))
	assert.Equal(t, int64(2), totalPages(21, 20))
	assert.Equal(t, int64(5), totalPages(100, 20))
}
