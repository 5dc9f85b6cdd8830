package models

import "gorm.io/gorm"

// migrationModels is the full set of tables owned by this service.
func migrationModels() []interface{} {
	return []interface{}{
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
}

// MigrateDatabase creates/updates all tables owned by this service.
func MigrateDatabase(db *gorm.DB) error {
	return db.AutoMigrate(migrationModels()...)
}
