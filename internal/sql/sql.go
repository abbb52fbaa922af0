// Package sql embeds the warehouse DDL migrations and the queries the loader
// runs against them.
package sql

import (
	"embed"
)

// Migrations holds migrations/*.sql, applied in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_load_run.sql
var RegisterLoadRun string

//go:embed queries/finish_load_run.sql
var FinishLoadRun string

//go:embed queries/record_migration.sql
var RecordMigration string

//go:embed queries/applied_migrations.sql
var AppliedMigrations string
