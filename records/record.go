// Package records generates the randomized structured claim records that get
// stamped into the document template. Generation is feeder-list driven with
// regex-based synthesis for formatted identifiers, and dependency-ordered so
// derived fields (totals, insured identity) stay coherent.
package records

import (
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServiceLine is one billed procedure row on the claim.
type ServiceLine struct {
	FromDate  time.Time
	ToDate    time.Time
	PlaceCode string
	CPTCode   string
	Diagnosis string // pointer into the claim's diagnosis list, "A".."D"
	Charge    float64
	Units     int
}

// ClaimRecord is one synthetic claim. Field order mirrors the form layout.
type ClaimRecord struct {
	ULID ulid.ULID

	// Patient
	PatientLastName  string
	PatientFirstName string
	PatientMI        string
	PatientDOB       time.Time
	PatientSex       string // "M" or "F"
	PatientStreet    string
	PatientCity      string
	PatientState     string
	PatientZip       string
	PatientPhone     string

	// Insured
	Relationship     string // "self", "spouse", "child", "other"
	InsuredLastName  string
	InsuredFirstName string
	InsuredMI        string
	InsuredID        string
	GroupNumber      string
	PlanName         string

	// Provider
	ProviderName  string
	ProviderNPI   string
	ProviderTaxID string
	ProviderPhone string
	Specialty     string

	// Claim body
	Diagnoses     []string // ICD codes, up to four
	ServiceLines  []ServiceLine
	TotalCharge   float64
	AmountPaid    float64
	BalanceDue    float64
	PatientSigned time.Time
	AcceptAssign  bool
}

// DocBase returns the base name used for every file derived from this record.
func (r *ClaimRecord) DocBase() string {
	return "claim_" + r.ULID.String()
}
