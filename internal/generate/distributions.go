package generate

import "github.com/gyeh/psplake/internal/model"

// Case outcome distribution.
var (
	caseStatuses     = []string{model.CaseActive, model.CaseClosed, model.CaseOnHold}
	caseStatusWeight = []float64{0.60, 0.35, 0.05}

	closureReasons = []string{
		model.ClosureCompletedTherapy,
		"ABANDONED",
		"LOST_TO_FOLLOWUP",
		"PATIENT_DECLINED",
		"TRANSFERRED",
	}
	closureWeights = []float64{0.50, 0.25, 0.15, 0.07, 0.03}
)

const caseManagers = 20

// Status journeys walked by the status-history generator.
var (
	pathSuccessful = []string{
		model.StatusInquiry,
		model.StatusEnrolled,
		model.StatusBVPending,
		model.StatusBVComplete,
		model.StatusPAPending,
		model.StatusPAApproved,
		model.StatusShipped,
		model.StatusActive,
	}
	pathAbandonedAtBV = []string{
		model.StatusInquiry,
		model.StatusEnrolled,
		model.StatusBVPending,
		model.StatusAbandoned,
	}
	pathAbandonedAtPA = []string{
		model.StatusInquiry,
		model.StatusEnrolled,
		model.StatusBVPending,
		model.StatusBVComplete,
		model.StatusPAPending,
		model.StatusPADenied,
		model.StatusAbandoned,
	}
	pathAbandonedEarly = []string{
		model.StatusInquiry,
		model.StatusEnrolled,
		model.StatusAbandoned,
	}
	abandonmentPaths = [][]string{pathAbandonedEarly, pathAbandonedAtBV, pathAbandonedAtPA}

	paDenialReasons = []string{"NOT_MEDICALLY_NECESSARY", "MISSING_DOCUMENTATION", "COVERAGE_ISSUE"}
)

// Shipment distributions.
var (
	shipmentClaimStatuses = []string{"PAID", "DENIED", "REVERSED"}
	shipmentClaimWeights  = []float64{0.90, 0.08, 0.02}

	commercialCopays = []float64{0, 10, 25, 50, 100, 150}
	medicareCopays   = []float64{0, 5, 15, 30, 75}
)

const (
	pharmacies       = 50
	shipmentVariance = 0.3
)

// Claim distributions.
var (
	claimTypes       = []string{model.ClaimPharmacy, model.ClaimMedical}
	claimTypeWeights = []float64{0.60, 0.40}

	procedureCodes = []string{"99213", "99214", "96372", "J1234"}

	claimStatuses      = []string{"PAID", "DENIED", "PENDING"}
	claimStatusWeights = []float64{0.85, 0.10, 0.05}
)

// claimAmountRange bounds uniform paid amounts by claim type.
type claimAmountRange struct {
	paidLo, paidHi       float64
	patientLo, patientHi float64
}

var claimAmounts = map[string]claimAmountRange{
	model.ClaimPharmacy: {paidLo: 5000, paidHi: 15000, patientLo: 0, patientHi: 500},
	model.ClaimMedical:  {paidLo: 100, paidHi: 500, patientLo: 0, patientHi: 50},
}

const (
	claimWindowDays = 30
	claimVariance   = 0.3
)

// Plan types with special handling.
const (
	planCashPay    = "CASH_PAY"
	planCommercial = "COMMERCIAL"
	planMedicare   = "MEDICARE"
)

const (
	hubVendorRate = 0.90
	inquiryRate   = 0.90
)
