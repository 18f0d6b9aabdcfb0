package migrations

import "github.com/uptrace/bun/migrate"

// Migrations collects the schema steps; each step registers itself from a
// file named <version>_<name>.go, which bun uses as the migration name.
var Migrations = migrate.NewMigrations()
