package encounter

import (
	"time"

	"github.com/google/uuid"
)

// VerificationToken tracks one member verification from initiation to its
// final disposition. The member fields are a snapshot taken when the token
// was issued, so later enrolment changes do not rewrite history.
type VerificationToken struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Token              string    `db:"token" json:"token"`
	MembershipID       string    `db:"membership_id" json:"membership_id"`
	NHISNumber         string    `db:"nhis_number" json:"nhis_number"`
	FirstName          string    `db:"first_name" json:"first_name"`
	MiddleName         *string   `db:"middle_name" json:"middle_name,omitempty"`
	LastName           string    `db:"last_name" json:"last_name"`
	DateOfBirth        time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender             string    `db:"gender" json:"gender"`
	PhoneNumber        *string   `db:"phone_number" json:"phone_number,omitempty"`
	GhanaCardNumber    *string   `db:"ghana_card_number" json:"ghana_card_number,omitempty"`
	ResidentialAddress string    `db:"residential_address" json:"residential_address"`
	EnrolmentStatus    string    `db:"enrolment_status" json:"enrolment_status"`
	InsuranceType      string    `db:"insurance_type" json:"insurance_type"`
	CurrentExpiryDate  time.Time `db:"current_expiry_date" json:"current_expiry_date"`
	ProfileImageURL    string    `db:"profile_image_url" json:"profile_image_url"`

	// Written by the compare step. Repeating compare overwrites both.
	CompareImageURL    *string `db:"compare_image_url" json:"compare_image_url,omitempty"`
	VerificationStatus *bool   `db:"verification_status" json:"verification_status,omitempty"`

	// Written by the finalize step. DispositionName and FinalTime are
	// always set together.
	EncounterImageURL       *string    `db:"encounter_image_url" json:"encounter_image_url,omitempty"`
	FinalVerificationStatus *bool      `db:"final_verification_status" json:"final_verification_status,omitempty"`
	DispositionName         *string    `db:"disposition_name" json:"disposition_name,omitempty"`
	FinalTime               *time.Time `db:"final_time" json:"final_time,omitempty"`

	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Finalized reports whether the token has received its closing disposition.
func (t *VerificationToken) Finalized() bool {
	return t.FinalTime != nil
}

// FullName joins the snapshot name parts.
func (t *VerificationToken) FullName() string {
	name := t.FirstName
	if t.MiddleName != nil && *t.MiddleName != "" {
		name += " " + *t.MiddleName
	}
	return name + " " + t.LastName
}
