package model

// Table describes one generated source table and where it lands on disk.
type Table struct {
	Name        string // e.g. "psp_enrollments"
	Label       string // human-readable name for reports
	MonthColumn string // partition-style YYYY-MM column
}

// File returns the raw/bronze parquet file name for the table.
func (t Table) File() string {
	return t.Name + ".parquet"
}

const (
	TableEnrollments   = "psp_enrollments"
	TableCases         = "psp_cases"
	TableStatusHistory = "psp_status_history"
	TableShipments     = "specialty_pharmacy_shipments"
	TableClaims        = "claims"
)

// AllTables lists the PSP source tables in generation (dependency) order.
var AllTables = []Table{
	{Name: TableEnrollments, Label: "PSP Enrollments", MonthColumn: "enrolled_month"},
	{Name: TableCases, Label: "PSP Cases", MonthColumn: "opened_month"},
	{Name: TableStatusHistory, Label: "PSP Status History", MonthColumn: "status_start_month"},
	{Name: TableShipments, Label: "Specialty Pharmacy Shipments", MonthColumn: "shipment_month"},
	{Name: TableClaims, Label: "Claims", MonthColumn: "claim_month"},
}

// TableNames returns just the table names for all tables.
func TableNames() []string {
	names := make([]string, len(AllTables))
	for i, t := range AllTables {
		names[i] = t.Name
	}
	return names
}

// TableByName returns the Table for the given name, or ok=false.
func TableByName(name string) (Table, bool) {
	for _, t := range AllTables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Bronze audit columns appended to every ingested table.
const (
	ColBronzeLoadedAt = "_bronze_loaded_at"
	ColBronzeSource   = "_bronze_source"
)
