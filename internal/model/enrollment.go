package model

import "time"

// Enrollment is a single PSP enrollment row as written to psp_enrollments.
// Optional attributes are pointers so the data-quality pass can null them.
type Enrollment struct {
	EnrollmentID        string     `parquet:"enrollment_id"`
	PatientIDHash       string     `parquet:"patient_id_hash"`
	ProgramID           string     `parquet:"program_id"`
	ProgramName         string     `parquet:"program_name"`
	ProgramType         string     `parquet:"program_type"`
	Indication          string     `parquet:"indication"`
	NDCCode             string     `parquet:"ndc_code"`
	EnrolledTS          time.Time  `parquet:"enrolled_ts,timestamp(microsecond)"`
	EnrolledMonth       string     `parquet:"enrolled_month"`
	InquiryTS           *time.Time `parquet:"inquiry_ts,timestamp(microsecond)"`
	EnrollmentChannel   string     `parquet:"enrollment_channel"`
	HubVendor           *string    `parquet:"hub_vendor,optional"`
	PayerID             *string    `parquet:"payer_id,optional"`
	PayerName           *string    `parquet:"payer_name,optional"`
	PlanType            string     `parquet:"plan_type"`
	PrescriberNPI       *string    `parquet:"prescriber_npi,optional"`
	PrescriberSpecialty *string    `parquet:"prescriber_specialty,optional"`
	PatientState        *string    `parquet:"patient_state,optional"`
	PatientZip3         *string    `parquet:"patient_zip3,optional"`
	CreatedAt           time.Time  `parquet:"created_at,timestamp(microsecond)"`
}

// AnchorTS returns the timestamp a case journey starts from: the inquiry
// when known, otherwise the enrollment itself.
func (e *Enrollment) AnchorTS() time.Time {
	if e.InquiryTS != nil {
		return *e.InquiryTS
	}
	return e.EnrolledTS
}
