package model

import "time"

// Claim types.
const (
	ClaimPharmacy = "PHARMACY"
	ClaimMedical  = "MEDICAL"
)

// Claim is a medical or pharmacy claim for a patient with shipments.
// Medical claims carry a procedure code and no NDC; pharmacy claims the reverse.
// Money fields are dollars rounded to cents; zero amounts are stored as null.
type Claim struct {
	ClaimID       string    `parquet:"claim_id"`
	EnrollmentID  string    `parquet:"enrollment_id"`
	PatientIDHash string    `parquet:"patient_id_hash"`
	ClaimDate     time.Time `parquet:"claim_date,timestamp(microsecond)"`
	ClaimMonth    string    `parquet:"claim_month"`
	ClaimType     string    `parquet:"claim_type"`
	ProcedureCode *string   `parquet:"procedure_code,optional"`
	NDCCode       *string   `parquet:"ndc_code,optional"`
	PayerID       *string   `parquet:"payer_id,optional"`
	ProviderNPI   *string   `parquet:"provider_npi,optional"`
	ClaimStatus   string    `parquet:"claim_status"`
	PaidAmount    *float64  `parquet:"paid_amount,optional"`
	PatientPaid   *float64  `parquet:"patient_paid,optional"`
	CreatedAt     time.Time `parquet:"created_at,timestamp(microsecond)"`
}
