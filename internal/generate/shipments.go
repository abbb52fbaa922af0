package generate

import (
	"fmt"
	"math"

	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/normalize"
	"github.com/gyeh/psplake/internal/quality"
	"github.com/gyeh/psplake/internal/sample"
)

// Shipments samples the share of enrollments that reached a first shipment
// and simulates their refill sequence until the scale end date.
func (g *Generator) Shipments(enrollments []model.Enrollment) []model.Shipment {
	s := g.sampler(model.TableShipments)
	createdAt := g.now()
	scale := g.cfg.Scale()

	avg := g.cfg.Multipliers.ShipmentsPerShippedPatient
	cadence := g.cfg.Timing.RefillCadence
	cadenceW := g.cfg.Timing.CadenceWeights()

	nShipped := int(math.Round(g.cfg.FunnelRates.FirstShipment * float64(len(enrollments))))
	shipped := s.Indices(len(enrollments), nShipped)

	g.log.Info().
		Int("patients", len(shipped)).
		Float64("avg_shipments", avg).
		Msg("generating shipments")

	var rows []model.Shipment
	counter := 0
	for p, idx := range shipped {
		e := &enrollments[idx]

		n := int(avg * s.Uniform(1-shipmentVariance, 1+shipmentVariance))
		if n < 1 {
			n = 1
		}

		shipDate := e.EnrolledTS.Add(days(s.IntRange(5, 15)))
		_, seq := idParts(e.EnrollmentID)

		for refill := 0; refill < n; refill++ {
			daysSupply := sample.PickWeighted(s, cadence, cadenceW).DaysSupply
			fillDate := shipDate.Add(-days(s.IntRange(0, 2)))

			quantity := 1.0
			if daysSupply == 90 {
				quantity = 3.0
			}

			claimStatus := sample.PickWeighted(s, shipmentClaimStatuses, shipmentClaimWeights)
			copay := 0.0
			if claimStatus == "PAID" {
				switch e.PlanType {
				case planCommercial:
					copay = sample.Pick(s, commercialCopays)
				case planMedicare:
					copay = sample.Pick(s, medicareCopays)
				}
			}

			pharmacy := fmt.Sprintf("PHARM-%03d", s.IntRange(1, pharmacies))

			counter++
			rows = append(rows, model.Shipment{
				ShipmentID:     fmt.Sprintf("SHIP-%08d", counter),
				EnrollmentID:   e.EnrollmentID,
				PatientIDHash:  e.PatientIDHash,
				PrescriptionID: fmt.Sprintf("RX-%s-%03d", seq, refill),
				FillDate:       normalize.TruncateDay(fillDate),
				ShipDate:       normalize.TruncateDay(shipDate),
				ShipmentMonth:  normalize.MonthPartition(shipDate),
				NDCCode:        e.NDCCode,
				ProductName:    e.ProgramName,
				DaysSupply:     int32(daysSupply),
				Quantity:       quantity,
				RefillNumber:   int32(refill),
				PharmacyID:     pharmacy,
				ClaimStatus:    claimStatus,
				CopayAmount:    ptr(normalize.RoundCents(copay)),
				CreatedAt:      createdAt,
			})

			shipDate = shipDate.Add(days(daysSupply + s.IntRange(-3, 5)))
			if shipDate.After(scale.End) {
				break
			}
		}

		if (p+1)%1000 == 0 {
			g.log.Debug().Int("patients", p+1).Int("target", len(shipped)).Msg("shipments progress")
		}
	}

	rows, _ = quality.Inject(rows, g.cfg.DataQuality, shipmentDateColumns, shipmentNullColumns,
		g.qualitySampler(model.TableShipments), createdAt, g.log.With().Str("table", model.TableShipments).Logger())
	return rows
}
