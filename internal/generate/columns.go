package generate

import (
	"time"

	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/normalize"
	"github.com/gyeh/psplake/internal/quality"
)

// enrollmentColumns lists every enrollment column the data-quality pass can
// touch. Which of them get nulled is decided by data_quality.nullable_fields.
var enrollmentColumns = []quality.Column[model.Enrollment]{
	{Name: "enrolled_ts", SetTime: func(r *model.Enrollment, t time.Time) { r.EnrolledTS = t }},
	{Name: "inquiry_ts",
		Null:    func(r *model.Enrollment) { r.InquiryTS = nil },
		SetTime: func(r *model.Enrollment, t time.Time) { r.InquiryTS = &t }},
	{Name: "hub_vendor", Null: func(r *model.Enrollment) { r.HubVendor = nil }},
	{Name: "payer_id", Null: func(r *model.Enrollment) { r.PayerID = nil }},
	{Name: "payer_name", Null: func(r *model.Enrollment) { r.PayerName = nil }},
	{Name: "prescriber_npi", Null: func(r *model.Enrollment) { r.PrescriberNPI = nil }},
	{Name: "prescriber_specialty", Null: func(r *model.Enrollment) { r.PrescriberSpecialty = nil }},
	{Name: "patient_state", Null: func(r *model.Enrollment) { r.PatientState = nil }},
	{Name: "patient_zip3", Null: func(r *model.Enrollment) { r.PatientZip3 = nil }},
}

var enrollmentDateColumns = []quality.Column[model.Enrollment]{enrollmentColumns[0], enrollmentColumns[1]}

var caseDateColumns = []quality.Column[model.Case]{
	{Name: "case_opened_ts", SetTime: func(r *model.Case, t time.Time) { r.CaseOpenedTS = t }},
	{Name: "closed_ts", SetTime: func(r *model.Case, t time.Time) { r.ClosedTS = &t }},
}

var caseNullColumns = []quality.Column[model.Case]{
	{Name: "closed_ts", Null: func(r *model.Case) { r.ClosedTS = nil }},
	{Name: "closure_reason", Null: func(r *model.Case) { r.ClosureReason = nil }},
}

var statusDateColumns = []quality.Column[model.StatusRecord]{
	{Name: "status_start_ts", SetTime: func(r *model.StatusRecord, t time.Time) { r.StatusStartTS = t }},
	{Name: "status_end_ts", SetTime: func(r *model.StatusRecord, t time.Time) { r.StatusEndTS = &t }},
}

var statusNullColumns = []quality.Column[model.StatusRecord]{
	{Name: "status_end_ts", Null: func(r *model.StatusRecord) { r.StatusEndTS = nil }},
	{Name: "status_reason", Null: func(r *model.StatusRecord) { r.StatusReason = nil }},
}

// Shipment and claim dates are calendar dates, so injected values stay at midnight.
var shipmentDateColumns = []quality.Column[model.Shipment]{
	{Name: "fill_date", SetTime: func(r *model.Shipment, t time.Time) { r.FillDate = normalize.TruncateDay(t) }},
	{Name: "ship_date", SetTime: func(r *model.Shipment, t time.Time) { r.ShipDate = normalize.TruncateDay(t) }},
}

var shipmentNullColumns = []quality.Column[model.Shipment]{
	{Name: "copay_amount", Null: func(r *model.Shipment) { r.CopayAmount = nil }},
}

var claimDateColumns = []quality.Column[model.Claim]{
	{Name: "claim_date", SetTime: func(r *model.Claim, t time.Time) { r.ClaimDate = normalize.TruncateDay(t) }},
}

var claimNullColumns = []quality.Column[model.Claim]{
	{Name: "procedure_code", Null: func(r *model.Claim) { r.ProcedureCode = nil }},
	{Name: "ndc_code", Null: func(r *model.Claim) { r.NDCCode = nil }},
	{Name: "paid_amount", Null: func(r *model.Claim) { r.PaidAmount = nil }},
	{Name: "patient_paid", Null: func(r *model.Claim) { r.PatientPaid = nil }},
}
