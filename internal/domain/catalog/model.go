package catalog

import "time"

// Medicine is one row of the NHIS medicines price list, keyed by its
// published code.
type Medicine struct {
	Code               string    `db:"code" json:"code"`
	GenericName        string    `db:"generic_name" json:"generic_name"`
	UnitOfPricing      string    `db:"unit_of_pricing" json:"unit_of_pricing"`
	Price              float64   `db:"price" json:"price"`
	LevelOfPrescribing string    `db:"level_of_prescribing" json:"level_of_prescribing"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// ServiceTariff is one row of the procedure and lab tariff schedule.
type ServiceTariff struct {
	Code      string    `db:"code" json:"code"`
	Service   string    `db:"service" json:"service"`
	Tariff    float64   `db:"tariff" json:"tariff"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Disposition is a closing outcome a clinician can attach when finalizing a
// verification.
type Disposition struct {
	ID          int     `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}
