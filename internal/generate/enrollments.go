package generate

import (
	"fmt"
	"time"

	"github.com/gyeh/psplake/internal/config"
	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/normalize"
	"github.com/gyeh/psplake/internal/quality"
	"github.com/gyeh/psplake/internal/sample"
)

// Enrollments draws one enrollment per configured scale slot, then applies the
// data-quality pass with the configured nullable fields.
func (g *Generator) Enrollments() []model.Enrollment {
	scale := g.cfg.Scale()
	dims := g.cfg.Dimensions
	s := g.sampler(model.TableEnrollments)
	createdAt := g.now()

	productW := dims.ProductWeights()
	payerW := dims.PayerWeights()
	programW := config.NamedWeights(dims.ProgramTypes)
	planW := config.NamedWeights(dims.PlanTypes)
	channelW := config.NamedWeights(dims.Channels)
	hubW := config.NamedWeights(dims.HubVendors)
	specialtyW := config.NamedWeights(dims.PrescriberSpecialties)

	spanDays := int(scale.End.Sub(scale.Start).Hours() / 24)

	g.log.Info().
		Str("scale", g.cfg.ActiveScale).
		Int("target", scale.Enrollments).
		Str("start", scale.StartDate).
		Str("end", scale.EndDate).
		Msg("generating enrollments")

	rows := make([]model.Enrollment, 0, scale.Enrollments)
	for i := 0; i < scale.Enrollments; i++ {
		product := sample.PickWeighted(s, dims.Products, productW)
		programType := sample.PickWeighted(s, dims.ProgramTypes, programW).Name

		enrolled := scale.Start.
			Add(days(s.IntRange(0, spanDays))).
			Add(time.Duration(s.IntRange(0, 86400)) * time.Second)

		inquiryBefore := s.IntRange(0, 14)
		var inquiry *time.Time
		if s.Chance(inquiryRate) {
			inquiry = ptr(enrolled.Add(-days(inquiryBefore)))
		}

		planType := sample.PickWeighted(s, dims.PlanTypes, planW).Name
		var payerID, payerName *string
		if planType != planCashPay {
			payer := sample.PickWeighted(s, dims.Payers, payerW)
			payerID, payerName = ptr(payer.PayerID), ptr(payer.PayerName)
		}

		channel := sample.PickWeighted(s, dims.Channels, channelW).Name

		var hubVendor *string
		if s.Chance(hubVendorRate) {
			hubVendor = ptr(sample.PickWeighted(s, dims.HubVendors, hubW).Name)
		}

		specialty := sample.PickWeighted(s, dims.PrescriberSpecialties, specialtyW).Name

		rows = append(rows, model.Enrollment{
			EnrollmentID:        fmt.Sprintf("PSP-%d-%06d", enrolled.Year(), i+1),
			PatientIDHash:       normalize.PatientHash(i),
			ProgramID:           product.ProductID,
			ProgramName:         product.ProductName,
			ProgramType:         programType,
			Indication:          product.Indication,
			NDCCode:             product.NDC,
			EnrolledTS:          enrolled,
			EnrolledMonth:       normalize.MonthPartition(enrolled),
			InquiryTS:           inquiry,
			EnrollmentChannel:   channel,
			HubVendor:           hubVendor,
			PayerID:             payerID,
			PayerName:           payerName,
			PlanType:            planType,
			PrescriberNPI:       ptr(s.NPI()),
			PrescriberSpecialty: ptr(specialty),
			PatientState:        ptr(s.USState()),
			PatientZip3:         ptr(s.Zip3()),
			CreatedAt:           createdAt,
		})

		if (i+1)%progressEvery == 0 {
			g.log.Debug().Int("generated", i+1).Int("target", scale.Enrollments).Msg("enrollments progress")
		}
	}

	nullCols, unknown := quality.Select(enrollmentColumns, g.cfg.DataQuality.NullableFields)
	if len(unknown) > 0 {
		g.log.Warn().Strs("columns", unknown).Msg("ignoring non-nullable enrollment fields in data_quality.nullable_fields")
	}
	rows, _ = quality.Inject(rows, g.cfg.DataQuality, enrollmentDateColumns, nullCols,
		g.qualitySampler(model.TableEnrollments), createdAt, g.log.With().Str("table", model.TableEnrollments).Logger())
	return rows
}
