// noshow-sweep runs a single no-show detection pass and exits. Deploy as a
// scheduled job when the in-process sweeper is disabled
// (DISABLE_NOSHOW_SWEEPER=true on the API service).
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/noshow-sweep
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/viniciussvasques/fixelo-cleaning-sub000/config"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/workflow"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	// No redis here: the sweep's conditional update is the authoritative
	// guard, the redis claim only trims duplicate work when available.
	logger := config.GetLogger()
	remediated, err := workflow.RunNoShowSweep(ctx, db, logger, config.NewSettingsProvider())
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("sweep complete: %d assignment(s) remediated\n", remediated)
}
