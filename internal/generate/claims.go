package generate

import (
	"fmt"
	"time"

	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/normalize"
	"github.com/gyeh/psplake/internal/quality"
	"github.com/gyeh/psplake/internal/sample"
)

// shipWindow is the first and last ship date seen for one enrollment.
type shipWindow struct {
	first, last time.Time
}

func shipWindows(shipments []model.Shipment) map[string]shipWindow {
	out := make(map[string]shipWindow)
	for i := range shipments {
		sh := &shipments[i]
		w, ok := out[sh.EnrollmentID]
		if !ok {
			out[sh.EnrollmentID] = shipWindow{first: sh.ShipDate, last: sh.ShipDate}
			continue
		}
		if sh.ShipDate.Before(w.first) {
			w.first = sh.ShipDate
		}
		if sh.ShipDate.After(w.last) {
			w.last = sh.ShipDate
		}
		out[sh.EnrollmentID] = w
	}
	return out
}

// Claims draws medical and pharmacy claims for every enrollment with at least
// one shipment. Claim dates fall within the patient's shipment window padded
// by claimWindowDays on both sides.
func (g *Generator) Claims(enrollments []model.Enrollment, shipments []model.Shipment) []model.Claim {
	s := g.sampler(model.TableClaims)
	createdAt := g.now()
	years := g.cfg.Scale().YearsOfData

	windows := shipWindows(shipments)
	base := int(g.cfg.Multipliers.ClaimsPerPatientYear * float64(years))
	lo := int(float64(base) * (1 - claimVariance))
	hi := int(float64(base) * (1 + claimVariance))

	var patients []*model.Enrollment
	for i := range enrollments {
		if _, ok := windows[enrollments[i].EnrollmentID]; ok {
			patients = append(patients, &enrollments[i])
		}
	}

	g.log.Info().
		Int("patients", len(patients)).
		Int("claims_per_patient_min", lo).
		Int("claims_per_patient_max", hi).
		Msg("generating claims")

	var rows []model.Claim
	for p, e := range patients {
		w := windows[e.EnrollmentID]
		start := w.first.Add(-days(claimWindowDays))
		end := w.last.Add(days(claimWindowDays))
		spanSeconds := end.Sub(start).Seconds()

		n := s.IntRange(lo, hi)
		for k := 0; k < n; k++ {
			claimTS := start.Add(time.Duration(s.Uniform(0, spanSeconds) * float64(time.Second)))
			rows = append(rows, g.claim(s, len(rows)+1, e, claimTS, createdAt))
		}

		if (p+1)%2000 == 0 {
			g.log.Debug().Int("patients", p+1).Int("target", len(patients)).Msg("claims progress")
		}
	}
	g.log.Info().Int("claims", len(rows)).Msg("claims drawn")

	rows, _ = quality.Inject(rows, g.cfg.DataQuality, claimDateColumns, claimNullColumns,
		g.qualitySampler(model.TableClaims), createdAt, g.log.With().Str("table", model.TableClaims).Logger())
	return rows
}

func (g *Generator) claim(s *sample.Sampler, n int, e *model.Enrollment, ts, createdAt time.Time) model.Claim {
	c := model.Claim{
		ClaimID:       fmt.Sprintf("CLM-%08d", n),
		EnrollmentID:  e.EnrollmentID,
		PatientIDHash: e.PatientIDHash,
		ClaimDate:     normalize.TruncateDay(ts),
		ClaimMonth:    normalize.MonthPartition(ts),
		ClaimType:     sample.PickWeighted(s, claimTypes, claimTypeWeights),
		PayerID:       e.PayerID,
		ProviderNPI:   e.PrescriberNPI,
		ClaimStatus:   sample.PickWeighted(s, claimStatuses, claimStatusWeights),
		CreatedAt:     createdAt,
	}

	if c.ClaimType == model.ClaimMedical {
		c.ProcedureCode = ptr(sample.Pick(s, procedureCodes))
	} else {
		c.NDCCode = ptr(e.NDCCode)
	}

	if c.ClaimStatus == "PAID" {
		r := claimAmounts[c.ClaimType]
		c.PaidAmount = normalize.OptionalAmount(s.Uniform(r.paidLo, r.paidHi))
		c.PatientPaid = normalize.OptionalAmount(s.Uniform(r.patientLo, r.patientHi))
	}
	return c
}
