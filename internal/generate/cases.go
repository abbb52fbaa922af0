package generate

import (
	"fmt"
	"time"

	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/normalize"
	"github.com/gyeh/psplake/internal/quality"
	"github.com/gyeh/psplake/internal/sample"
)

// Cases opens one case per enrollment row, including any duplicated rows the
// enrollment data-quality pass introduced.
func (g *Generator) Cases(enrollments []model.Enrollment) []model.Case {
	s := g.sampler(model.TableCases)
	createdAt := g.now()

	g.log.Info().Int("enrollments", len(enrollments)).Msg("generating cases")

	rows := make([]model.Case, 0, len(enrollments))
	for i := range enrollments {
		e := &enrollments[i]
		opened := e.EnrolledTS.Add(time.Duration(s.IntRange(-12, 12)) * time.Hour)

		status := sample.PickWeighted(s, caseStatuses, caseStatusWeight)

		var closed *time.Time
		var reason *string
		if status == model.CaseClosed {
			closed = ptr(opened.Add(days(s.IntRange(30, 180))))
			reason = ptr(sample.PickWeighted(s, closureReasons, closureWeights))
		}

		year, seq := idParts(e.EnrollmentID)
		rows = append(rows, model.Case{
			CaseID:        fmt.Sprintf("CASE-%s-%s", year, seq),
			EnrollmentID:  e.EnrollmentID,
			PatientIDHash: e.PatientIDHash,
			CaseOpenedTS:  opened,
			OpenedMonth:   normalize.MonthPartition(opened),
			CaseManagerID: fmt.Sprintf("CM-%03d", s.IntRange(1, caseManagers)),
			CurrentStatus: status,
			ClosedTS:      closed,
			ClosureReason: reason,
			CreatedAt:     createdAt,
		})

		if (i+1)%progressEvery == 0 {
			g.log.Debug().Int("generated", i+1).Int("target", len(enrollments)).Msg("cases progress")
		}
	}

	rows, _ = quality.Inject(rows, g.cfg.DataQuality, caseDateColumns, caseNullColumns,
		g.qualitySampler(model.TableCases), createdAt, g.log.With().Str("table", model.TableCases).Logger())
	return rows
}
