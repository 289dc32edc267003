package adjudicator

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhisverify/nhisverify/internal/domain/claim"
	"github.com/nhisverify/nhisverify/internal/platform/httperr"
)

// notCovered marks a code absent from the pricing catalogs. The oracle is
// told explicitly rather than having the item silently dropped.
const notCovered = "Not covered by NHIS"

type enrichedDrug struct {
	claim.Drug
	GenericName   string  `json:"generic_name,omitempty"`
	UnitOfPricing string  `json:"unit_of_pricing,omitempty"`
	Price         float64 `json:"price,omitempty"`
	Details       string  `json:"details,omitempty"`
}

type enrichedService struct {
	Code    string  `json:"code"`
	Service string  `json:"service,omitempty"`
	Tariff  float64 `json:"tariff,omitempty"`
	Details string  `json:"details,omitempty"`
}

// enrichedClaim is the assessment payload: the submitted claim with every
// code resolved against the pricing catalogs.
type enrichedClaim struct {
	EncounterToken    string            `json:"encounter_token"`
	Diagnosis         string            `json:"diagnosis"`
	ServiceType       []string          `json:"service_type"`
	Drugs             []enrichedDrug    `json:"drugs"`
	MedicalProcedures []enrichedService `json:"medical_procedures"`
	LabTests          []enrichedService `json:"lab_tests"`
	PatientName       string            `json:"patient_name"`
	HospitalName      string            `json:"hospital_name"`
	Location          string            `json:"location"`
}

func (w *Worker) enrich(ctx context.Context, c *claim.Claim) (*enrichedClaim, error) {
	out := &enrichedClaim{
		EncounterToken:    c.EncounterToken,
		Diagnosis:         c.Diagnosis,
		ServiceType:       c.ServiceType,
		Drugs:             []enrichedDrug{},
		MedicalProcedures: []enrichedService{},
		LabTests:          []enrichedService{},
		PatientName:       c.PatientName,
		HospitalName:      c.HospitalName,
		Location:          c.Location,
	}

	for _, d := range c.Drugs {
		ed := enrichedDrug{Drug: d}
		med, err := w.catalog.GetMedicine(ctx, d.Code)
		switch {
		case err == nil:
			ed.GenericName = med.GenericName
			ed.UnitOfPricing = med.UnitOfPricing
			ed.Price = med.Price
		case errors.Is(err, httperr.ErrNotFound):
			ed.Details = notCovered
		default:
			return nil, fmt.Errorf("resolve drug %s: %w", d.Code, err)
		}
		out.Drugs = append(out.Drugs, ed)
	}

	resolve := func(codes []string) ([]enrichedService, error) {
		items := []enrichedService{}
		for _, code := range codes {
			tariff, err := w.catalog.GetTariff(ctx, code)
			switch {
			case err == nil:
				items = append(items, enrichedService{Code: tariff.Code, Service: tariff.Service, Tariff: tariff.Tariff})
			case errors.Is(err, httperr.ErrNotFound):
				items = append(items, enrichedService{Code: code, Details: notCovered})
			default:
				return nil, fmt.Errorf("resolve service %s: %w", code, err)
			}
		}
		return items, nil
	}

	var err error
	if out.MedicalProcedures, err = resolve(c.MedicalProcedures); err != nil {
		return nil, err
	}
	if out.LabTests, err = resolve(c.LabTests); err != nil {
		return nil, err
	}
	return out, nil
}
