package visit

import (
	"time"

	"github.com/google/uuid"
)

// RecentVisit is one row of the visit ledger. Each verification initiation
// appends one, carrying a snapshot of the member's card details as they were
// on the day of the visit.
type RecentVisit struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	MembershipID        string    `db:"membership_id" json:"membership_id"`
	NHISNumber          string    `db:"nhis_number" json:"nhis_number"`
	FirstName           string    `db:"first_name" json:"first_name"`
	MiddleName          *string   `db:"middle_name" json:"middle_name,omitempty"`
	LastName            string    `db:"last_name" json:"last_name"`
	DateOfBirth         time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender              string    `db:"gender" json:"gender"`
	EnrolmentStatus     string    `db:"enrolment_status" json:"enrolment_status"`
	ProfileImageURL     string    `db:"profile_image_url" json:"profile_image_url"`
	VisitDate           time.Time `db:"visit_date" json:"visit_date"`
	UserID              *string   `db:"user_id" json:"user_id,omitempty"`
	VerificationTokenID uuid.UUID `db:"verification_token_id" json:"verification_token_id"`
}

// Filter narrows visit listings.
type Filter struct {
	UserID string
	From   *time.Time
	To     *time.Time
}
