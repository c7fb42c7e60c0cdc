package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo moderation states
const (
	PhotoPending  = "pending"
	PhotoApproved = "approved"
	PhotoRejected = "rejected"
)

type Photo struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PhotoURL string             `bson:"photoUrl" json:"photoUrl"`
	Status   string             `bson:"status" json:"status"` // pending, approved, rejected
}

type PersonalDetails struct {
	HeightCm      int    `bson:"heightCm,omitempty" json:"heightCm,omitempty"`
	MaritalStatus string `bson:"maritalStatus,omitempty" json:"maritalStatus,omitempty"` // never_married, divorced, widowed, awaiting_divorce
	MotherTongue  string `bson:"motherTongue,omitempty" json:"motherTongue,omitempty"`
}

type ReligiousDetails struct {
	Religion string `bson:"religion,omitempty" json:"religion,omitempty"`
	Caste    string `bson:"caste,omitempty" json:"caste,omitempty"`
	SubCaste string `bson:"subCaste,omitempty" json:"subCaste,omitempty"`
	Manglik  bool   `bson:"manglik,omitempty" json:"manglik,omitempty"`
}

type EducationDetails struct {
	HighestEducation string `bson:"highestEducation,omitempty" json:"highestEducation,omitempty"`
	EducationField   string `bson:"educationField,omitempty" json:"educationField,omitempty"`
	InstitutionName  string `bson:"institutionName,omitempty" json:"institutionName,omitempty"`
}

type ProfessionalDetails struct {
	Occupation       string `bson:"occupation,omitempty" json:"occupation,omitempty"`
	OrganizationName string `bson:"organizationName,omitempty" json:"organizationName,omitempty"`
	AnnualIncomeMin  int    `bson:"annualIncomeMin,omitempty" json:"annualIncomeMin,omitempty"`
	AnnualIncomeMax  int    `bson:"annualIncomeMax,omitempty" json:"annualIncomeMax,omitempty"`
}

type FamilyDetails struct {
	FatherName            string `bson:"fatherName,omitempty" json:"fatherName,omitempty"`
	FatherOccupation      string `bson:"fatherOccupation,omitempty" json:"fatherOccupation,omitempty"`
	MotherName            string `bson:"motherName,omitempty" json:"motherName,omitempty"`
	MotherOccupation      string `bson:"motherOccupation,omitempty" json:"motherOccupation,omitempty"`
	Brothers              int    `bson:"brothers" json:"brothers"`
	Sisters               int    `bson:"sisters" json:"sisters"`
	FamilyType            string `bson:"familyType,omitempty" json:"familyType,omitempty"`
	CurrentResidenceCity  string `bson:"currentResidenceCity,omitempty" json:"currentResidenceCity,omitempty"`
	CurrentResidenceState string `bson:"currentResidenceState,omitempty" json:"currentResidenceState,omitempty"`
}

type LifestylePreferences struct {
	Diet                string   `bson:"diet,omitempty" json:"diet,omitempty"`
	Smoking             bool     `bson:"smoking,omitempty" json:"smoking,omitempty"`
	Drinking            bool     `bson:"drinking,omitempty" json:"drinking,omitempty"`
	Hobbies             []string `bson:"hobbies,omitempty" json:"hobbies,omitempty"`
	AboutMe             string   `bson:"aboutMe,omitempty" json:"aboutMe,omitempty"`
	PartnerExpectations string   `bson:"partnerExpectations,omitempty" json:"partnerExpectations,omitempty"`
}

type Subscription struct {
	Tier       string    `bson:"tier,omitempty" json:"tier,omitempty"` // free, silver, gold, platinum
	ExpiryDate time.Time `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
}

// Profile is the matrimonial record, one per user, keyed on UserID.
type Profile struct {
	ID                   primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	UserID               primitive.ObjectID    `bson:"userId" json:"userId"`
	FullName             string                `bson:"fullName" json:"fullName"`
	Gender               string                `bson:"gender" json:"gender"`
	DateOfBirth          time.Time             `bson:"dateOfBirth" json:"dateOfBirth"`
	ProfileCreatedFor    string                `bson:"profileCreatedFor,omitempty" json:"profileCreatedFor,omitempty"`
	Photos               []Photo               `bson:"photos" json:"photos"`
	PersonalDetails      *PersonalDetails      `bson:"personalDetails,omitempty" json:"personalDetails,omitempty"`
	ReligiousDetails     *ReligiousDetails     `bson:"religiousDetails,omitempty" json:"religiousDetails,omitempty"`
	EducationDetails     *EducationDetails     `bson:"educationDetails,omitempty" json:"educationDetails,omitempty"`
	ProfessionalDetails  *ProfessionalDetails  `bson:"professionalDetails,omitempty" json:"professionalDetails,omitempty"`
	FamilyDetails        *FamilyDetails        `bson:"familyDetails,omitempty" json:"familyDetails,omitempty"`
	LifestylePreferences *LifestylePreferences `bson:"lifestylePreferences,omitempty" json:"lifestylePreferences,omitempty"`
	Subscription         *Subscription         `bson:"subscription,omitempty" json:"subscription,omitempty"`
	IsVerified           bool                  `bson:"isVerified" json:"isVerified"`
	CreatedAt            time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time             `bson:"updatedAt" json:"updatedAt"`
}
