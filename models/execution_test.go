package models

import (
	"errors"
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
)

// A concurrent first-touch loser must be recognized as a duplicate (and
// re-read the winner's row) instead of surfacing a raw 500.
func TestIsDuplicateExecutionErr(t *testing.T) {
	dup := &mysqlDriver.MySQLError{Number: 1062, Message: "Duplicate entry '42' for key 'executions.job_id'"}
	if !isDuplicateExecutionErr(dup) {
		t.Error("expected 1062 to classify as duplicate")
	}
	if !isDuplicateExecutionErr(fmt.Errorf("create: %w", dup)) {
		t.Error("expected wrapped 1062 to classify as duplicate")
	}
	if isDuplicateExecutionErr(&mysqlDriver.MySQLError{Number: 1146}) {
		t.Error("missing table is not a duplicate")
	}
	if isDuplicateExecutionErr(errors.New("boom")) {
		t.Error("generic errors are not duplicates")
	}
	if isDuplicateExecutionErr(nil) {
		t.Error("nil is not a duplicate")
	}
}
