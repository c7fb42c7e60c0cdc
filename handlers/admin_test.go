package handlers

import (
	"strings"
	"testing"
	"time"

	"vivaah/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildUsersCSVHeaderOnly(t *testing.T) {
	assert.Equal(t, "Full Name,Phone,Role,Created At", buildUsersCSV(nil))
}

func TestBuildUsersCSVRows(t *testing.T) {
	created := time.Date(2026, time.January, 5, 9, 30, 0, 0, time.UTC)
	users := []models.User{
		{FullName: "Anita Sharma", PhoneNumber: "+919876543210", Role: models.RoleUser, CreatedAt: created},
		{FullName: "Ravi Kumar", PhoneNumber: "+918765432109", Role: models.RoleAdmin, CreatedAt: created.Add(time.Hour)},
	}

	csv := buildUsersCSV(users)
	lines := strings.Split(csv, "\n")

	assert.Len(t, lines, 3)
	assert.Equal(t, "Full Name,Phone,Role,Created At", lines[0])
	assert.Equal(t, `"Anita Sharma","+919876543210","user","2026-01-05T09:30:00Z"`, lines[1])
	assert.Equal(t, `"Ravi Kumar","+918765432109","admin","2026-01-05T10:30:00Z"`, lines[2])
}

func TestBuildUsersCSVEscapesQuotes(t *testing.T) {
	users := []models.User{
		{FullName: `Priya "PJ" Joshi`, PhoneNumber: "+917654321098", Role: models.RoleUser},
	}

	csv := buildUsersCSV(users)
	lines := strings.Split(csv, "\n")

	assert.Contains(t, lines[1], `"Priya ""PJ"" Joshi"`)
}

func TestBuildUsersCSVCommaInName(t *testing.T) {
	users := []models.User{
		{FullName: "Sharma, Anita", PhoneNumber: "+919999999999", Role: models.RoleModerator},
	}

	csv := buildUsersCSV(users)
	lines := strings.Split(csv, "\n")

	// Quoting keeps the embedded comma inside a single field.
	assert.Equal(t, `"Sharma, Anita"`, strings.SplitN(lines[1], `","`, 2)[0]+`"`)
}
