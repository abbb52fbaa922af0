// mkfixture writes a small test-scale enrollments parquet and prints its
// categorical distributions, for eyeballing generator changes.
// Usage: go run ./cmd/mkfixture --config configs/data_generation_config.yaml --out testdata/test_enrollments.parquet
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/gyeh/psplake/internal/config"
	"github.com/gyeh/psplake/internal/generate"
	"github.com/gyeh/psplake/internal/model"
	"github.com/gyeh/psplake/internal/parquetio"
)

func main() {
	cfgPath := flag.String("config", "configs/data_generation_config.yaml", "generation config")
	out := flag.String("out", "testdata/test_enrollments.parquet", "output parquet")
	rows := flag.Int("rows", 100, "enrollments to generate")
	seed := flag.Int64("seed", 0, "random seed override")
	checkOnly := flag.Bool("check", false, "only print distributions, don't write")
	flag.Parse()

	gen, err := config.LoadGeneration(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	base := gen.Scale()
	err = gen.WithScale("fixture", config.Scale{
		Label:       "fixture",
		Enrollments: *rows,
		YearsOfData: base.YearsOfData,
		StartDate:   base.StartDate,
		EndDate:     base.EndDate,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixture scale: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		gen.Project.RandomSeed = *seed
	}

	enrollments := generate.New(gen, zerolog.Nop()).Enrollments()

	fmt.Printf("Generated %d enrollments (seed %d)\n", len(enrollments), gen.Project.RandomSeed)
	printDistribution("program_name", enrollments, func(e *model.Enrollment) string { return e.ProgramName })
	printDistribution("plan_type", enrollments, func(e *model.Enrollment) string { return e.PlanType })
	printDistribution("enrollment_channel", enrollments, func(e *model.Enrollment) string { return e.EnrollmentChannel })
	printDistribution("payer_name", enrollments, func(e *model.Enrollment) string { return deref(e.PayerName) })
	printDistribution("patient_state", enrollments, func(e *model.Enrollment) string { return deref(e.PatientState) })

	if *checkOnly {
		return
	}

	size, err := parquetio.WriteFile(*out, enrollments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "write fixture: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nWrote %s (%d bytes)\n", *out, size)
}

func printDistribution(name string, rows []model.Enrollment, key func(*model.Enrollment) string) {
	counts := map[string]int{}
	for i := range rows {
		counts[key(&rows[i])]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Printf("\n%s:\n", name)
	for i, k := range keys {
		if i == 10 {
			fmt.Printf("  ... %d more\n", len(keys)-10)
			break
		}
		fmt.Printf("  %-25s %4d  %5.1f%%\n", k, counts[k], 100*float64(counts[k])/float64(len(rows)))
	}
}

func deref(s *string) string {
	if s == nil {
		return "NULL"
	}
	return *s
}
