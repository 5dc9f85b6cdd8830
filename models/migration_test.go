package models

import (
	"reflect"
	"testing"
)

// Every table the service reads must be created by MigrateDatabase, or a
// fresh deployment fails at first query. The settings provider in
// particular reads operational_settings on every cache miss.
func TestMigrationModels_CoverAllOwnedTables(t *testing.T) {
	required := []interface{}{
		&User{},
		&Job{},
		&Assignment{},
		&WorkerProfile{},
		&Payment{},
		&Execution{},
		&ExecutionPhoto{},
		&ChecklistTemplateItem{},
		&ChecklistItem{},
		&OutboxEvent{},
		&RefundIdempotencyKey{},
		&OperationalSetting{},
	}

	migrated := map[reflect.Type]bool{}
	for _, m := range migrationModels() {
		migrated[reflect.TypeOf(m)] = true
	}
	for _, m := range required {
		if !migrated[reflect.TypeOf(m)] {
			t.Errorf("%T missing from the migration list", m)
		}
	}
}
