package claim

import "time"

// Claim statuses. A claim starts pending and is moved to one of the other
// states by the adjudication worker.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusFlagged  = "flagged"
	StatusRejected = "rejected"
)

// Drug is one prescribed item on a claim, identified by its price-list code.
type Drug struct {
	Code      string  `json:"code"`
	Dosage    string  `json:"dosage"`
	Frequency *string `json:"frequency,omitempty"`
	Duration  *string `json:"duration,omitempty"`
}

// Claim maps to the claims table. The encounter token is the primary key:
// one claim per verified encounter. Patient, hospital and location are
// denormalized at submission time.
type Claim struct {
	EncounterToken    string    `db:"encounter_token" json:"encounter_token"`
	Diagnosis         string    `db:"diagnosis" json:"diagnosis"`
	ServiceType       []string  `db:"service_type" json:"service_type"`
	Drugs             []Drug    `db:"drugs" json:"drugs"`
	MedicalProcedures []string  `db:"medical_procedures" json:"medical_procedures"`
	LabTests          []string  `db:"lab_tests" json:"lab_tests"`
	PatientName       string    `db:"patient_name" json:"patient_name"`
	HospitalName      string    `db:"hospital_name" json:"hospital_name"`
	Location          string    `db:"location" json:"location"`
	UserID            string    `db:"user_id" json:"user_id"`
	Status            string    `db:"status" json:"status"`
	Reason            *string   `db:"reason" json:"reason,omitempty"`
	AdjustedAmount    *float64  `db:"adjusted_amount" json:"adjusted_amount,omitempty"`
	TotalPayout       *float64  `db:"total_payout" json:"total_payout,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Draft maps to the claim_drafts table: a partially filled claim a clinician
// saves before submission. Every content field is optional.
type Draft struct {
	EncounterToken    string    `db:"encounter_token" json:"encounter_token"`
	Diagnosis         *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	ServiceType       []string  `db:"service_type" json:"service_type,omitempty"`
	Drugs             []Drug    `db:"drugs" json:"drugs,omitempty"`
	MedicalProcedures []string  `db:"medical_procedures" json:"medical_procedures,omitempty"`
	LabTests          []string  `db:"lab_tests" json:"lab_tests,omitempty"`
	PatientName       *string   `db:"patient_name" json:"patient_name,omitempty"`
	HospitalName      *string   `db:"hospital_name" json:"hospital_name,omitempty"`
	Location          *string   `db:"location" json:"location,omitempty"`
	Status            *string   `db:"status" json:"status,omitempty"`
	Reason            *string   `db:"reason" json:"reason,omitempty"`
	AdjustedAmount    *float64  `db:"adjusted_amount" json:"adjusted_amount,omitempty"`
	TotalPayout       *float64  `db:"total_payout" json:"total_payout,omitempty"`
	UserID            string    `db:"user_id" json:"user_id"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// DraftUpdate carries a partial draft edit. Nil fields are left unchanged.
type DraftUpdate struct {
	Diagnosis         *string  `json:"diagnosis,omitempty"`
	ServiceType       []string `json:"service_type,omitempty"`
	Drugs             []Drug   `json:"drugs,omitempty"`
	MedicalProcedures []string `json:"medical_procedures,omitempty"`
	LabTests          []string `json:"lab_tests,omitempty"`
	PatientName       *string  `json:"patient_name,omitempty"`
	HospitalName      *string  `json:"hospital_name,omitempty"`
	Location          *string  `json:"location,omitempty"`
	Status            *string  `json:"status,omitempty"`
	Reason            *string  `json:"reason,omitempty"`
	AdjustedAmount    *float64 `json:"adjusted_amount,omitempty"`
	TotalPayout       *float64 `json:"total_payout,omitempty"`
}

// Filter narrows claim listings.
type Filter struct {
	UserID         string
	EncounterToken string
	Status         string
	From           *time.Time
	To             *time.Time
}

// NotificationCount is a running total of adjudication outcomes per status.
type NotificationCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"count" json:"count"`
}
