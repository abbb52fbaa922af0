package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/normalize"
)

// Generation is the on-disk YAML structure describing what data to synthesize.
type Generation struct {
	Project     Project          `yaml:"project"`
	ActiveScale string           `yaml:"active_scale"`
	Scales      map[string]Scale `yaml:"scales"`
	Dimensions  Dimensions       `yaml:"dimensions"`
	FunnelRates FunnelRates      `yaml:"funnel_rates"`
	Multipliers Multipliers      `yaml:"multipliers"`
	Timing      Timing           `yaml:"timing"`
	DataQuality DataQuality      `yaml:"data_quality"`
	Phases      Phases           `yaml:"phases"`
	Output      Output           `yaml:"output"`
}

// Project names the run and seeds every random stream.
type Project struct {
	Name       string `yaml:"name"`
	RandomSeed int64  `yaml:"random_seed"`
}

// Scale is a named volume preset. Start and End are filled by Validate.
type Scale struct {
	Label       string `yaml:"label"`
	Enrollments int    `yaml:"enrollments"`
	YearsOfData int    `yaml:"years_of_data"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`

	Start time.Time `yaml:"-"`
	End   time.Time `yaml:"-"`
}

// Named is a weighted categorical value such as a channel or plan type.
type Named struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// Product is a branded therapy enrolled patients are assigned to.
type Product struct {
	ProductID   string  `yaml:"product_id"`
	ProductName string  `yaml:"product_name"`
	Indication  string  `yaml:"indication"`
	NDC         string  `yaml:"ndc"`
	Weight      float64 `yaml:"weight"`
}

// Payer is an insurer attached to non cash-pay enrollments.
type Payer struct {
	PayerID   string  `yaml:"payer_id"`
	PayerName string  `yaml:"payer_name"`
	Weight    float64 `yaml:"weight"`
}

// Dimensions holds the categorical distributions enrollments draw from.
type Dimensions struct {
	Channels              []Named   `yaml:"channels"`
	HubVendors            []Named   `yaml:"hub_vendors"`
	ProgramTypes          []Named   `yaml:"program_types"`
	Products              []Product `yaml:"products"`
	Payers                []Payer   `yaml:"payers"`
	PlanTypes             []Named   `yaml:"plan_types"`
	PrescriberSpecialties []Named   `yaml:"prescriber_specialties"`
}

// FunnelRates are the conversion rates between journey stages.
type FunnelRates struct {
	FirstShipment float64 `yaml:"first_shipment"`
}

// Multipliers scale downstream table volumes relative to enrollments.
type Multipliers struct {
	StatusChangesPerCase       float64 `yaml:"status_changes_per_case"`
	ShipmentsPerShippedPatient float64 `yaml:"shipments_per_shipped_patient"`
	ClaimsPerPatientYear       float64 `yaml:"claims_per_patient_year"`
}

// RefillCadence is one weighted days-supply option for refills.
type RefillCadence struct {
	DaysSupply int     `yaml:"days_supply"`
	Weight     float64 `yaml:"weight"`
}

// Timing configures shipment cadence.
type Timing struct {
	RefillCadence []RefillCadence `yaml:"refill_cadence"`
}

// DataQuality controls the post-generation corruption pass.
type DataQuality struct {
	InjectIssues     bool     `yaml:"inject_issues"`
	DuplicateRate    float64  `yaml:"duplicate_rate"`
	NullRateOptional float64  `yaml:"null_rate_optional"`
	FutureDateRate   float64  `yaml:"future_date_rate"`
	NullableFields   []string `yaml:"nullable_fields"`
}

// Phase toggles a generation phase and lists the tables it writes.
type Phase struct {
	Enabled bool     `yaml:"enabled"`
	Sources []string `yaml:"sources"`
}

// Phases groups the configured generation phases.
type Phases struct {
	Phase1 Phase `yaml:"phase1"`
}

// Output holds the raw and bronze directory locations.
type Output struct {
	BaseDir   string `yaml:"base_dir"`
	BronzeDir string `yaml:"bronze_dir"`
}

// defaultGeneration returns the values used for keys the YAML omits.
func defaultGeneration() Generation {
	return Generation{
		Project:     Project{Name: "psp-lakehouse", RandomSeed: 42},
		FunnelRates: FunnelRates{FirstShipment: 0.45},
		Multipliers: Multipliers{
			StatusChangesPerCase:       5,
			ShipmentsPerShippedPatient: 6,
			ClaimsPerPatientYear:       12,
		},
		Timing: Timing{RefillCadence: []RefillCadence{
			{DaysSupply: 30, Weight: 0.8},
			{DaysSupply: 90, Weight: 0.2},
		}},
		DataQuality: DataQuality{
			DuplicateRate:    0.005,
			NullRateOptional: 0.02,
			FutureDateRate:   0.001,
		},
		Phases: Phases{Phase1: Phase{Enabled: true, Sources: model.TableNames()}},
		Output: Output{BaseDir: "data/raw_samples", BronzeDir: "data/bronze"},
	}
}

// LoadGeneration reads and validates a YAML generation config.
func LoadGeneration(path string) (*Generation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return ParseGeneration(data)
}

// ParseGeneration decodes YAML over the defaults and validates the result.
func ParseGeneration(data []byte) (*Generation, error) {
	g := defaultGeneration()
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks the document for internal consistency and resolves scale dates.
func (g *Generation) Validate() error {
	if len(g.Scales) == 0 {
		return fmt.Errorf("no scales defined in config")
	}
	for name, s := range g.Scales {
		resolved, err := resolveScale(name, s)
		if err != nil {
			return err
		}
		g.Scales[name] = resolved
	}
	if _, ok := g.Scales[g.ActiveScale]; !ok {
		return fmt.Errorf("active_scale %q is not defined in scales", g.ActiveScale)
	}

	d := g.Dimensions
	checks := []struct {
		name    string
		weights []float64
	}{
		{"channels", NamedWeights(d.Channels)},
		{"hub_vendors", NamedWeights(d.HubVendors)},
		{"program_types", NamedWeights(d.ProgramTypes)},
		{"plan_types", NamedWeights(d.PlanTypes)},
		{"prescriber_specialties", NamedWeights(d.PrescriberSpecialties)},
		{"products", d.ProductWeights()},
		{"payers", d.PayerWeights()},
		{"timing.refill_cadence", g.Timing.CadenceWeights()},
	}
	for _, c := range checks {
		if err := checkWeights(c.name, c.weights); err != nil {
			return err
		}
	}
	for _, rc := range g.Timing.RefillCadence {
		if rc.DaysSupply <= 0 {
			return fmt.Errorf("timing.refill_cadence: days_supply must be positive, got %d", rc.DaysSupply)
		}
	}

	rates := []struct {
		name string
		v    float64
	}{
		{"funnel_rates.first_shipment", g.FunnelRates.FirstShipment},
		{"data_quality.duplicate_rate", g.DataQuality.DuplicateRate},
		{"data_quality.null_rate_optional", g.DataQuality.NullRateOptional},
		{"data_quality.future_date_rate", g.DataQuality.FutureDateRate},
	}
	for _, r := range rates {
		if r.v < 0 || r.v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %g", r.name, r.v)
		}
	}
	if g.Multipliers.ShipmentsPerShippedPatient < 0 || g.Multipliers.ClaimsPerPatientYear < 0 {
		return fmt.Errorf("multipliers must not be negative")
	}

	for _, src := range g.Phases.Phase1.Sources {
		if _, ok := model.TableByName(src); !ok {
			return fmt.Errorf("unknown source %q in phases.phase1.sources", src)
		}
	}
	return nil
}

func resolveScale(name string, s Scale) (Scale, error) {
	if s.Enrollments <= 0 {
		return s, fmt.Errorf("scale %q: enrollments must be positive", name)
	}
	if s.YearsOfData <= 0 {
		s.YearsOfData = 1
	}
	start := normalize.ParseDate(s.StartDate)
	if start == nil {
		return s, fmt.Errorf("scale %q: invalid start_date %q", name, s.StartDate)
	}
	end := normalize.ParseDate(s.EndDate)
	if end == nil {
		return s, fmt.Errorf("scale %q: invalid end_date %q", name, s.EndDate)
	}
	if end.Before(*start) {
		return s, fmt.Errorf("scale %q: end_date %s is before start_date %s", name, s.EndDate, s.StartDate)
	}
	s.Start, s.End = *start, *end
	return s, nil
}

// Scale returns the active scale preset. Validate must have succeeded.
func (g *Generation) Scale() Scale {
	return g.Scales[g.ActiveScale]
}

// WithScale registers (or replaces) a scale and makes it active.
func (g *Generation) WithScale(name string, s Scale) error {
	resolved, err := resolveScale(name, s)
	if err != nil {
		return err
	}
	if g.Scales == nil {
		g.Scales = make(map[string]Scale)
	}
	g.Scales[name] = resolved
	g.ActiveScale = name
	return nil
}

// ScaleNames returns the configured scale names in sorted order.
func (g *Generation) ScaleNames() []string {
	names := make([]string, 0, len(g.Scales))
	for name := range g.Scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WritesSource reports whether the phase1 source list includes table.
func (g *Generation) WritesSource(table string) bool {
	for _, s := range g.Phases.Phase1.Sources {
		if s == table {
			return true
		}
	}
	return false
}

// ProductWeights returns product weights in config order.
func (d Dimensions) ProductWeights() []float64 {
	w := make([]float64, len(d.Products))
	for i, p := range d.Products {
		w[i] = p.Weight
	}
	return w
}

// PayerWeights returns payer weights in config order.
func (d Dimensions) PayerWeights() []float64 {
	w := make([]float64, len(d.Payers))
	for i, p := range d.Payers {
		w[i] = p.Weight
	}
	return w
}

// CadenceWeights returns refill cadence weights in config order.
func (t Timing) CadenceWeights() []float64 {
	w := make([]float64, len(t.RefillCadence))
	for i, rc := range t.RefillCadence {
		w[i] = rc.Weight
	}
	return w
}

// NamedWeights extracts the weights of a Named table in order.
func NamedWeights(items []Named) []float64 {
	w := make([]float64, len(items))
	for i, n := range items {
		w[i] = n.Weight
	}
	return w
}

func checkWeights(name string, weights []float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("dimension %s must not be empty", name)
	}
	var total float64
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("dimension %s has a negative weight", name)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("dimension %s weights sum to zero", name)
	}
	return nil
}

func validateSources(sources []string) error {
	for _, s := range sources {
		if _, ok := model.TableByName(s); !ok {
			return fmt.Errorf("unknown source table %q", s)
		}
	}
	return nil
}
