package generate

import (
	"context"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/psplake/internal/config"
	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/parquetio"
)

const testYAML = `
project: {name: test, random_seed: 42}
active_scale: test
scales:
  test:
    enrollments: 200
    years_of_data: 1
    start_date: "2024-01-01"
    end_date: "2024-12-31"
dimensions:
  channels: [{name: FAX, weight: 0.5}, {name: PHONE, weight: 0.5}]
  hub_vendors: [{name: HUB_A, weight: 1}]
  program_types: [{name: COPAY_ONLY, weight: 1}]
  products:
    - {product_id: PROD-001, product_name: Drug A, indication: Psoriasis, ndc: "00000-0000-01", weight: 0.7}
    - {product_id: PROD-002, product_name: Drug B, indication: Asthma, ndc: "00000-0000-02", weight: 0.3}
  payers:
    - {payer_id: ELEV-001, payer_name: Elevance Health, weight: 1}
  plan_types:
    - {name: COMMERCIAL, weight: 0.5}
    - {name: MEDICARE, weight: 0.3}
    - {name: CASH_PAY, weight: 0.2}
  prescriber_specialties: [{name: DERMATOLOGY, weight: 1}]
`

var fixedNow = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, extra string) *config.Generation {
	t.Helper()
	g, err := config.ParseGeneration([]byte(testYAML + extra))
	if err != nil {
		t.Fatalf("ParseGeneration: %v", err)
	}
	return g
}

func newTestGenerator(cfg *config.Generation) *Generator {
	return New(cfg, zerolog.Nop()).WithClock(func() time.Time { return fixedNow })
}

func TestBuild_Deterministic(t *testing.T) {
	cfg := testConfig(t, "")
	a, err := newTestGenerator(cfg).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := newTestGenerator(cfg).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different datasets")
	}

	other := testConfig(t, "")
	other.Project.RandomSeed = 7
	c, err := newTestGenerator(other).Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(a.Enrollments, c.Enrollments) {
		t.Error("different seeds produced identical enrollments")
	}
}

func TestEnrollments(t *testing.T) {
	cfg := testConfig(t, "")
	rows := newTestGenerator(cfg).Enrollments()
	if len(rows) != 200 {
		t.Fatalf("len = %d, want 200", len(rows))
	}

	idRE := regexp.MustCompile(`^PSP-\d{4}-\d{6}$`)
	scale := cfg.Scale()
	for _, e := range rows {
		if !idRE.MatchString(e.EnrollmentID) {
			t.Errorf("bad enrollment id %q", e.EnrollmentID)
		}
		if e.EnrolledTS.Before(scale.Start) || e.EnrolledTS.After(scale.End.Add(24*time.Hour)) {
			t.Errorf("enrolled_ts %v outside scale window", e.EnrolledTS)
		}
		if e.EnrolledMonth != e.EnrolledTS.Format("2006-01") {
			t.Errorf("enrolled_month %q does not match %v", e.EnrolledMonth, e.EnrolledTS)
		}
		if e.InquiryTS != nil && e.InquiryTS.After(e.EnrolledTS) {
			t.Errorf("inquiry %v after enrollment %v", *e.InquiryTS, e.EnrolledTS)
		}
		if e.PlanType == planCashPay && (e.PayerID != nil || e.PayerName != nil) {
			t.Errorf("cash pay enrollment %s has a payer", e.EnrollmentID)
		}
		if e.PlanType != planCashPay && (e.PayerID == nil || *e.PayerID != "ELEV-001") {
			t.Errorf("insured enrollment %s missing payer", e.EnrollmentID)
		}
		if !e.CreatedAt.Equal(fixedNow) {
			t.Errorf("created_at = %v", e.CreatedAt)
		}
	}
}

func TestCasesAndStatusHistory(t *testing.T) {
	cfg := testConfig(t, "")
	g := newTestGenerator(cfg)
	enrollments := g.Enrollments()
	cases := g.Cases(enrollments)
	if len(cases) != len(enrollments) {
		t.Fatalf("cases = %d, enrollments = %d", len(cases), len(enrollments))
	}

	for i, c := range cases {
		e := enrollments[i]
		if c.EnrollmentID != e.EnrollmentID {
			t.Fatalf("case %d links %s, want %s", i, c.EnrollmentID, e.EnrollmentID)
		}
		if d := c.CaseOpenedTS.Sub(e.EnrolledTS); d < -12*time.Hour || d > 12*time.Hour {
			t.Errorf("case opened %v from enrollment", d)
		}
		if (c.CurrentStatus == model.CaseClosed) != (c.ClosedTS != nil) {
			t.Errorf("case %s status %s closed_ts %v", c.CaseID, c.CurrentStatus, c.ClosedTS)
		}
	}

	history := g.StatusHistory(cases, enrollments)
	byCase := map[string][]model.StatusRecord{}
	for _, r := range history {
		byCase[r.CaseID] = append(byCase[r.CaseID], r)
	}
	if len(byCase) != len(cases) {
		t.Errorf("history covers %d cases, want %d", len(byCase), len(cases))
	}

	for _, c := range cases {
		steps := byCase[c.CaseID]
		if len(steps) == 0 {
			continue
		}
		if steps[0].Status != model.StatusInquiry {
			t.Errorf("case %s starts at %s", c.CaseID, steps[0].Status)
		}
		last := steps[len(steps)-1]
		if last.StatusEndTS != nil {
			t.Errorf("case %s final status has an end timestamp", c.CaseID)
		}
		switch c.CurrentStatus {
		case model.CaseActive:
			if last.Status != model.StatusActive || len(steps) != len(pathSuccessful) {
				t.Errorf("active case %s ended at %s after %d steps", c.CaseID, last.Status, len(steps))
			}
		case model.CaseClosed:
			if last.Status != model.StatusClosed && last.Status != model.StatusAbandoned {
				t.Errorf("closed case %s ended at %s", c.CaseID, last.Status)
			}
		case model.CaseOnHold:
			if len(steps) < 3 || len(steps) > 6 {
				t.Errorf("on-hold case %s has %d steps", c.CaseID, len(steps))
			}
		}
		for i, st := range steps {
			if st.StatusEndTS != nil {
				if d := st.StatusEndTS.Sub(st.StatusStartTS); d < days(1) || d > days(3) {
					t.Errorf("case %s %s lasted %v", c.CaseID, st.Status, d)
				}
			}
			if i > 0 {
				lo, hi := 1, 5
				switch st.Status {
				case model.StatusBVComplete, model.StatusPAApproved:
					lo, hi = 1, 10
				case model.StatusShipped:
					lo, hi = 3, 14
				}
				gap := st.StatusStartTS.Sub(*steps[i-1].StatusEndTS)
				if gap < days(lo) || gap > days(hi) {
					t.Errorf("case %s %s started %v after previous status, want %d..%d days", c.CaseID, st.Status, gap, lo, hi)
				}
			}

			switch st.Status {
			case model.StatusPADenied:
				if st.StatusReason == nil || !slices.Contains(paDenialReasons, *st.StatusReason) {
					t.Errorf("case %s denial reason = %v", c.CaseID, st.StatusReason)
				}
			case model.StatusAbandoned:
				if !reflect.DeepEqual(st.StatusReason, c.ClosureReason) {
					t.Errorf("case %s abandoned reason = %v, closure reason = %v", c.CaseID, st.StatusReason, c.ClosureReason)
				}
			default:
				if st.StatusReason != nil {
					t.Errorf("case %s %s has reason %q", c.CaseID, st.Status, *st.StatusReason)
				}
			}
		}
	}
}

func TestStatusHistory_SkipsOrphanCases(t *testing.T) {
	g := newTestGenerator(testConfig(t, ""))
	cases := []model.Case{{CaseID: "CASE-2024-000001", EnrollmentID: "PSP-2024-999999", CurrentStatus: model.CaseActive}}
	if got := g.StatusHistory(cases, nil); len(got) != 0 {
		t.Errorf("expected no history for orphan case, got %d rows", len(got))
	}
}

func TestShipmentsAndClaims(t *testing.T) {
	cfg := testConfig(t, "")
	g := newTestGenerator(cfg)
	enrollments := g.Enrollments()
	shipments := g.Shipments(enrollments)

	plans := map[string]string{}
	for _, e := range enrollments {
		plans[e.EnrollmentID] = e.PlanType
	}
	copays := map[string][]float64{
		planCommercial: {0, 10, 25, 50, 100, 150},
		planMedicare:   {0, 5, 15, 30, 75},
	}
	scale := cfg.Scale()

	patients := map[string]bool{}
	for _, s := range shipments {
		patients[s.EnrollmentID] = true
		if s.CopayAmount == nil {
			t.Fatalf("shipment %s has no copay", s.ShipmentID)
		}
		copay := *s.CopayAmount
		allowed, ok := copays[plans[s.EnrollmentID]]
		switch {
		case s.ClaimStatus != "PAID" || !ok:
			if copay != 0 {
				t.Errorf("shipment %s (%s, %s) copay = %g, want 0", s.ShipmentID, plans[s.EnrollmentID], s.ClaimStatus, copay)
			}
		case !slices.Contains(allowed, copay):
			t.Errorf("shipment %s %s copay = %g, want one of %v", s.ShipmentID, plans[s.EnrollmentID], copay, allowed)
		}
		if s.RefillNumber > 0 && s.ShipDate.After(scale.End) {
			t.Errorf("refill %d of %s ships %v after the scale end", s.RefillNumber, s.EnrollmentID, s.ShipDate)
		}
		if s.DaysSupply != 30 && s.DaysSupply != 90 {
			t.Errorf("days_supply = %d", s.DaysSupply)
		}
		if s.DaysSupply == 90 && s.Quantity != 3 {
			t.Errorf("90-day fill quantity = %g", s.Quantity)
		}
		if s.FillDate.After(s.ShipDate) {
			t.Errorf("shipment %s filled after shipping", s.ShipmentID)
		}
		if s.ShipDate.Hour() != 0 || s.ShipDate.Minute() != 0 {
			t.Errorf("ship_date %v is not a calendar date", s.ShipDate)
		}
	}
	if want := 90; len(patients) != want {
		t.Errorf("shipped patients = %d, want %d", len(patients), want)
	}

	claims := g.Claims(enrollments, shipments)
	if len(claims) == 0 {
		t.Fatal("no claims generated")
	}
	windows := shipWindows(shipments)
	for _, c := range claims {
		w, ok := windows[c.EnrollmentID]
		if !ok {
			t.Fatalf("claim %s for patient without shipments", c.ClaimID)
		}
		lo := w.first.Add(-days(claimWindowDays + 1))
		hi := w.last.Add(days(claimWindowDays + 1))
		if c.ClaimDate.Before(lo) || c.ClaimDate.After(hi) {
			t.Errorf("claim %s date %v outside window [%v, %v]", c.ClaimID, c.ClaimDate, lo, hi)
		}
		switch c.ClaimType {
		case model.ClaimMedical:
			if c.NDCCode != nil || c.ProcedureCode == nil {
				t.Errorf("medical claim %s has ndc=%v procedure=%v", c.ClaimID, c.NDCCode, c.ProcedureCode)
			}
		case model.ClaimPharmacy:
			if c.NDCCode == nil || c.ProcedureCode != nil {
				t.Errorf("pharmacy claim %s has ndc=%v procedure=%v", c.ClaimID, c.NDCCode, c.ProcedureCode)
			}
		}
		if c.ClaimStatus != "PAID" {
			if c.PaidAmount != nil || c.PatientPaid != nil {
				t.Errorf("unpaid claim %s has amounts", c.ClaimID)
			}
			continue
		}
		amounts := []struct {
			name           string
			v              *float64
			wantLo, wantHi float64
			zeroIsNull     bool
		}{
			{"paid_amount", c.PaidAmount, 5000, 15000, false},
			{"patient_paid", c.PatientPaid, 0, 500, true},
		}
		if c.ClaimType == model.ClaimMedical {
			amounts[0].wantLo, amounts[0].wantHi = 100, 500
			amounts[1].wantLo, amounts[1].wantHi = 0, 50
		}
		for _, a := range amounts {
			if a.v == nil && a.zeroIsNull {
				continue
			}
			if a.v == nil || *a.v < a.wantLo || *a.v > a.wantHi {
				t.Errorf("%s claim %s %s = %v, want %g..%g", c.ClaimType, c.ClaimID, a.name, a.v, a.wantLo, a.wantHi)
			}
		}
	}
}

func TestDataQualityInjection_FutureDatesStayCalendarDates(t *testing.T) {
	cfg := testConfig(t, `
data_quality:
  inject_issues: true
  future_date_rate: 0.5
`)
	g := newTestGenerator(cfg)
	enrollments := g.Enrollments()
	shipments := g.Shipments(enrollments)
	claims := g.Claims(enrollments, shipments)

	midnight := func(ts time.Time) bool { return ts.Equal(ts.Truncate(24 * time.Hour)) }
	future := 0
	for _, s := range shipments {
		if s.ShipDate.After(fixedNow) || s.FillDate.After(fixedNow) {
			future++
		}
		if !midnight(s.FillDate) || !midnight(s.ShipDate) {
			t.Errorf("shipment %s fill %v ship %v not at midnight", s.ShipmentID, s.FillDate, s.ShipDate)
		}
	}
	for _, c := range claims {
		if c.ClaimDate.After(fixedNow) {
			future++
		}
		if !midnight(c.ClaimDate) {
			t.Errorf("claim %s date %v not at midnight", c.ClaimID, c.ClaimDate)
		}
	}
	if future == 0 {
		t.Error("expected injected future dates")
	}
}

func TestDataQualityInjection(t *testing.T) {
	cfg := testConfig(t, `
data_quality:
  inject_issues: true
  duplicate_rate: 0.05
  null_rate_optional: 0.10
  future_date_rate: 0.01
  nullable_fields: [patient_zip3, enrolled_ts]
`)
	rows := newTestGenerator(cfg).Enrollments()
	if len(rows) != 210 {
		t.Errorf("len = %d, want 200 + 10 duplicates", len(rows))
	}
	nulls := 0
	for _, e := range rows {
		if e.PatientZip3 == nil {
			nulls++
		}
	}
	if nulls != 20 {
		t.Errorf("null zip3 = %d, want 20", nulls)
	}
}

func TestRun_WritesSources(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, "phases:\n  phase1:\n    enabled: true\n    sources: [psp_enrollments, claims]\n")
	cfg.Output.BaseDir = dir

	summary, err := newTestGenerator(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Tables) != 2 {
		t.Fatalf("wrote %d tables, want 2", len(summary.Tables))
	}
	for _, ts := range summary.Tables {
		n, err := parquetio.CountRows(ts.FilePath)
		if err != nil {
			t.Fatalf("CountRows(%s): %v", ts.FilePath, err)
		}
		if n != ts.Rows {
			t.Errorf("%s: file has %d rows, summary says %d", ts.Table, n, ts.Rows)
		}
	}
	if _, err := parquetio.CountRows(filepath.Join(dir, "psp_cases.parquet")); err == nil {
		t.Error("psp_cases should not be written")
	}

	back, err := parquetio.ReadAll[model.Enrollment](filepath.Join(dir, "psp_enrollments.parquet"))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(back) != 200 {
		t.Fatalf("read back %d enrollments", len(back))
	}
	want := newTestGenerator(cfg).Enrollments()
	for i := range want {
		if !back[i].EnrolledTS.Equal(want[i].EnrolledTS) || !back[i].CreatedAt.Equal(want[i].CreatedAt) {
			t.Errorf("row %d: read back %v/%v, generated %v/%v", i,
				back[i].EnrolledTS, back[i].CreatedAt, want[i].EnrolledTS, want[i].CreatedAt)
		}
	}
}

func TestRun_PhaseDisabled(t *testing.T) {
	cfg := testConfig(t, "phases:\n  phase1:\n    enabled: false\n")
	if _, err := newTestGenerator(cfg).Run(context.Background()); err != ErrPhaseDisabled {
		t.Errorf("err = %v, want ErrPhaseDisabled", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Output.BaseDir = t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestGenerator(cfg).Run(ctx); err == nil {
		t.Error("expected error for cancelled context")
	}
}
