package member

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Member maps to the members table. The registry is read-only to this
// service: rows are loaded by the enrolment pipeline and re-enrolment adds a
// new row rather than updating in place, so lookups always take the most
// recent record for a membership id.
type Member struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	MembershipID       string    `db:"membership_id" json:"membership_id"`
	FirstName          string    `db:"first_name" json:"first_name"`
	MiddleName         *string   `db:"middle_name" json:"middle_name,omitempty"`
	LastName           string    `db:"last_name" json:"last_name"`
	DateOfBirth        time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender             string    `db:"gender" json:"gender"`
	MaritalStatus      string    `db:"marital_status" json:"marital_status"`
	NHISNumber         string    `db:"nhis_number" json:"nhis_number"`
	InsuranceType      string    `db:"insurance_type" json:"insurance_type"`
	IssueDate          time.Time `db:"issue_date" json:"issue_date"`
	EnrolmentStatus    string    `db:"enrolment_status" json:"enrolment_status"`
	CurrentExpiryDate  time.Time `db:"current_expiry_date" json:"current_expiry_date"`
	MobilePhoneNumber  string    `db:"mobile_phone_number" json:"mobile_phone_number"`
	ResidentialAddress string    `db:"residential_address" json:"residential_address"`
	GhanaCardNumber    string    `db:"ghana_card_number" json:"ghana_card_number"`
	ProfileImageURL    string    `db:"profile_image_url" json:"profile_image_url"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// FullName joins the name parts, skipping an absent middle name.
func (m *Member) FullName() string {
	parts := []string{m.FirstName}
	if m.MiddleName != nil && *m.MiddleName != "" {
		parts = append(parts, *m.MiddleName)
	}
	parts = append(parts, m.LastName)
	return strings.Join(parts, " ")
}

// AutocompleteRow is one search hit: the member plus their most recent visit
// and latest verification outcome, when any exist.
type AutocompleteRow struct {
	Member
	LastVisit               *time.Time `json:"last_visit,omitempty"`
	FinalVerificationStatus *bool      `json:"final_verification_status,omitempty"`
	DispositionName         *string    `json:"disposition_name,omitempty"`
}
