package storage

import (
	"os"
	"strings"
	"testing"
)

// The repository's statements and the migration DDL live in different files;
// this keeps the columns the write paths touch declared in the schema.
func TestMigrationDeclaresWrittenColumns(t *testing.T) {
	ddl, err := os.ReadFile("../../../../migrations/directory/001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}

	tables := map[string][]string{
		"professionals":         {"tenant_id", "name", "available", "updated_at"},
		"services":              {"duration_minutes", "slot_step_minutes", "price", "active", "unrestricted", "updated_at"},
		"qualifications":        {"service_id", "professional_id"},
		"professional_time_off": {"start_time", "end_time", "reason"},
	}
	for table, columns := range tables {
		block := tableBlock(t, string(ddl), table)
		for _, col := range columns {
			if !strings.Contains(block, col) {
				t.Fatalf("table %s is missing column %s", table, col)
			}
		}
	}
}

func tableBlock(t *testing.T, ddl, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(ddl, marker)
	if start < 0 {
		t.Fatalf("migration does not create table %s", table)
	}
	rest := ddl[start:]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("unterminated definition for table %s", table)
	}
	return rest[:end]
}
