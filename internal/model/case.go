package model

import "time"

// Case statuses.
const (
	CaseActive = "ACTIVE"
	CaseClosed = "CLOSED"
	CaseOnHold = "ON_HOLD"
)

// ClosureCompletedTherapy is the closure reason for cases that ran the full journey.
const ClosureCompletedTherapy = "COMPLETED_THERAPY"

// Case is a PSP case; exactly one is opened per enrollment row.
type Case struct {
	CaseID        string     `parquet:"case_id"`
	EnrollmentID  string     `parquet:"enrollment_id"`
	PatientIDHash string     `parquet:"patient_id_hash"`
	CaseOpenedTS  time.Time  `parquet:"case_opened_ts,timestamp(microsecond)"`
	OpenedMonth   string     `parquet:"opened_month"`
	CaseManagerID string     `parquet:"case_manager_id"`
	CurrentStatus string     `parquet:"current_status"`
	ClosedTS      *time.Time `parquet:"closed_ts,timestamp(microsecond)"`
	ClosureReason *string    `parquet:"closure_reason,optional"`
	CreatedAt     time.Time  `parquet:"created_at,timestamp(microsecond)"`
}
