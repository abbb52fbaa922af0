package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	CopyError       = 4
	GenerateError   = 5
	IngestError     = 6
	VerifyError     = 7
	PublishError    = 8
	MigrateError    = 9
)
