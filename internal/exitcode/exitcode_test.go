package exitcode

import "testing"

func TestCodesDistinct(t *testing.T) {
	codes := map[string]int{
		"Success":         Success,
		"UsageError":      UsageError,
		"ValidationError": ValidationError,
		"DBConnError":     DBConnError,
		"CopyError":       CopyError,
		"GenerateError":   GenerateError,
		"IngestError":     IngestError,
		"VerifyError":     VerifyError,
		"PublishError":    PublishError,
		"MigrateError":    MigrateError,
	}
	seen := map[int]string{}
	for name, code := range codes {
		if prev, ok := seen[code]; ok {
			t.Errorf("%s and %s share exit code %d", name, prev, code)
		}
		seen[code] = name
	}
}
