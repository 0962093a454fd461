package models

import (
	"time"

	"github.com/google/uuid"
)

// CaseType represents the procedural type of a case
type CaseType string

const (
	CaseTypeWritPetition CaseType = "writ_petition"
	CaseTypeCivilSuit    CaseType = "civil_suit"
	CaseTypeCriminal     CaseType = "criminal"
	CaseTypeAppeal       CaseType = "appeal"
	CaseTypePIL          CaseType = "pil"
	CaseTypeOther        CaseType = "other"
)

// Case represents a legal matter owned by one advocate
type Case struct {
	ID             uuid.UUID `json:"id"`
	AdvocateID     uuid.UUID `json:"advocate_id"`
	CaseNumber     string    `json:"case_number"`
	CaseType       CaseType  `json:"case_type"`
	CaseYear       int       `json:"case_year"`
	PetitionerName string    `json:"petitioner_name"`
	RespondentName string    `json:"respondent_name"`
	CourtName      *string   `json:"court_name,omitempty"`
	IsVisible      bool      `json:"is_visible"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
