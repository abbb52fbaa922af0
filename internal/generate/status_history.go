package generate

import (
	"fmt"
	"time"

	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/normalize"
	"github.com/gyeh/psplake/internal/quality"
	"github.com/gyeh/psplake/internal/sample"
)

// StatusHistory walks every case through the status path matching its
// outcome. Cases whose enrollment cannot be found are skipped.
func (g *Generator) StatusHistory(cases []model.Case, enrollments []model.Enrollment) []model.StatusRecord {
	s := g.sampler(model.TableStatusHistory)
	createdAt := g.now()

	anchors := make(map[string]time.Time, len(enrollments))
	for i := range enrollments {
		id := enrollments[i].EnrollmentID
		if _, seen := anchors[id]; !seen {
			anchors[id] = enrollments[i].AnchorTS()
		}
	}

	g.log.Info().
		Int("cases", len(cases)).
		Float64("avg_statuses_hint", g.cfg.Multipliers.StatusChangesPerCase).
		Msg("generating status history")

	rows := make([]model.StatusRecord, 0, len(cases)*len(pathSuccessful))
	skipped := 0
	for i := range cases {
		c := &cases[i]
		cursor, ok := anchors[c.EnrollmentID]
		if !ok {
			skipped++
			continue
		}

		path := statusPath(s, c)
		year, seq := idParts(c.CaseID)

		for step, status := range path {
			start := cursor
			if step > 0 {
				start = cursor.Add(days(statusDelay(s, status)))
			}

			var end *time.Time
			if step < len(path)-1 {
				end = ptr(start.Add(days(s.IntRange(1, 3))))
			}

			var reason *string
			switch status {
			case model.StatusPADenied:
				reason = ptr(sample.Pick(s, paDenialReasons))
			case model.StatusAbandoned:
				if c.ClosureReason != nil {
					reason = ptr(*c.ClosureReason)
				}
			}

			rows = append(rows, model.StatusRecord{
				StatusID:         fmt.Sprintf("STAT-%s-%s-%02d", year, seq, step+1),
				CaseID:           c.CaseID,
				EnrollmentID:     c.EnrollmentID,
				StatusStartTS:    start,
				StatusStartMonth: normalize.MonthPartition(start),
				StatusEndTS:      end,
				Status:           status,
				StatusReason:     reason,
				CreatedAt:        createdAt,
			})

			if end != nil {
				cursor = *end
			}
		}

		if (i+1)%progressEvery == 0 {
			g.log.Debug().Int("generated", i+1).Int("target", len(cases)).Msg("status history progress")
		}
	}
	if skipped > 0 {
		g.log.Warn().Int("cases", skipped).Msg("skipped cases without a matching enrollment")
	}

	rows, _ = quality.Inject(rows, g.cfg.DataQuality, statusDateColumns, statusNullColumns,
		g.qualitySampler(model.TableStatusHistory), createdAt, g.log.With().Str("table", model.TableStatusHistory).Logger())
	return rows
}

// statusPath picks the journey a case walked based on where it ended up.
func statusPath(s *sample.Sampler, c *model.Case) []string {
	switch c.CurrentStatus {
	case model.CaseActive:
		return pathSuccessful
	case model.CaseClosed:
		if c.ClosureReason != nil && *c.ClosureReason == model.ClosureCompletedTherapy {
			return append(append([]string{}, pathSuccessful...), model.StatusClosed)
		}
		return sample.Pick(s, abandonmentPaths)
	default:
		return pathSuccessful[:s.IntRange(3, 6)]
	}
}

// statusDelay is the number of days between the previous status ending and
// status starting.
func statusDelay(s *sample.Sampler, status string) int {
	switch status {
	case model.StatusBVComplete, model.StatusPAApproved:
		return s.IntRange(1, 10)
	case model.StatusShipped:
		return s.IntRange(3, 14)
	default:
		return s.IntRange(1, 5)
	}
}
