package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName          string             `bson:"fullName" json:"fullName"`
	PhoneNumber       string             `bson:"phoneNumber" json:"phoneNumber"` // unique; Google users carry their email here
	Gender            string             `bson:"gender" json:"gender"`           // male, female, other
	DateOfBirth       time.Time          `bson:"dateOfBirth" json:"dateOfBirth"`
	ProfileCreatedFor string             `bson:"profileCreatedFor" json:"profileCreatedFor"` // self, son, daughter, ...
	PasswordHash      string             `bson:"password" json:"-"`
	Role              string             `bson:"role" json:"role"`
	Avatar            string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Summary is the shape returned from auth endpoints; never includes the hash.
func (u User) Summary() map[string]interface{} {
	return map[string]interface{}{
		"id":                u.ID.Hex(),
		"fullName":          u.FullName,
		"phoneNumber":       u.PhoneNumber,
		"gender":            u.Gender,
		"dateOfBirth":       u.DateOfBirth,
		"profileCreatedFor": u.ProfileCreatedFor,
		"role":              u.Role,
		"avatar":            u.Avatar,
	}
}
