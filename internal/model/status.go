package model

import "time"

// Case journey statuses recorded in psp_status_history.
const (
	StatusInquiry    = "INQUIRY"
	StatusEnrolled   = "ENROLLED"
	StatusBVPending  = "BV_PENDING"
	StatusBVComplete = "BV_COMPLETE"
	StatusPAPending  = "PA_PENDING"
	StatusPAApproved = "PA_APPROVED"
	StatusPADenied   = "PA_DENIED"
	StatusShipped    = "SHIPPED"
	StatusActive     = "ACTIVE"
	StatusAbandoned  = "ABANDONED"
	StatusClosed     = "CLOSED"
)

// StatusRecord is one step of a case's status history. The final step of a
// journey has no end timestamp.
type StatusRecord struct {
	StatusID         string     `parquet:"status_id"`
	CaseID           string     `parquet:"case_id"`
	EnrollmentID     string     `parquet:"enrollment_id"`
	StatusStartTS    time.Time  `parquet:"status_start_ts,timestamp(microsecond)"`
	StatusStartMonth string     `parquet:"status_start_month"`
	StatusEndTS      *time.Time `parquet:"status_end_ts,timestamp(microsecond)"`
	Status           string     `parquet:"status"`
	StatusReason     *string    `parquet:"status_reason,optional"`
	CreatedAt        time.Time  `parquet:"created_at,timestamp(microsecond)"`
}
