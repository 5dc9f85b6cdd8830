// seed-dev populates a local database with a customer, a worker, a scheduled
// cleaning job with an accepted assignment and a captured payment, plus a
// checklist template for the service type. Prints a worker bearer token for
// exercising the execution endpoints.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-dev
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/config"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/utils"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateDatabase(db); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	customerEmail := "dev-customer@fixelo.app"
	customer := models.User{
		Name:  "Dev Customer",
		Email: &customerEmail,
		Phone: "+14155550100",
		Role:  models.UserRoleCustomer,
	}
	if err := db.WithContext(ctx).Where("phone = ?", customer.Phone).FirstOrCreate(&customer).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed customer: %v\n", err)
		os.Exit(1)
	}

	worker := models.User{
		Name:  "Dev Worker",
		Phone: "+14155550101",
		Role:  models.UserRoleWorker,
	}
	if err := db.WithContext(ctx).Where("phone = ?", worker.Phone).FirstOrCreate(&worker).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed worker: %v\n", err)
		os.Exit(1)
	}
	profile := models.WorkerProfile{
		UserID:        worker.ID,
		Rating:        decimal.NewFromFloat(5.0),
		AccountStatus: models.WorkerAccountStatusActive,
	}
	if err := db.WithContext(ctx).Where("user_id = ?", worker.ID).FirstOrCreate(&profile).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed worker profile: %v\n", err)
		os.Exit(1)
	}

	serviceType := "DEEP_CLEAN"
	templates := []models.ChecklistTemplateItem{
		{ServiceType: serviceType, Label: "Vacuum all carpets", Required: true, SortOrder: 1},
		{ServiceType: serviceType, Label: "Clean bathroom fixtures", Required: true, SortOrder: 2},
		{ServiceType: serviceType, Label: "Wipe window sills", Required: false, SortOrder: 3},
	}
	for i := range templates {
		if err := db.WithContext(ctx).
			Where("service_type = ? AND label = ?", serviceType, templates[i].Label).
			FirstOrCreate(&templates[i]).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed checklist template: %v\n", err)
			os.Exit(1)
		}
	}

	lat, lng := 37.7749, -122.4194
	job := models.Job{
		CustomerID:  customer.ID,
		WorkerID:    &worker.ID,
		ServiceType: serviceType,
		Status:      models.JobStatusAccepted,
		ScheduledAt: time.Now().UTC().Add(30 * time.Minute),
		Address:     "548 Market St, San Francisco, CA",
		Latitude:    &lat,
		Longitude:   &lng,
		Amount:      decimal.NewFromFloat(180.00),
	}
	if err := db.WithContext(ctx).Create(&job).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed job: %v\n", err)
		os.Exit(1)
	}

	assignment := models.Assignment{
		JobID:    job.ID,
		WorkerID: worker.ID,
		Status:   models.AssignmentStatusAccepted,
	}
	if err := db.WithContext(ctx).Create(&assignment).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed assignment: %v\n", err)
		os.Exit(1)
	}

	payment := models.Payment{
		JobID:            job.ID,
		GatewayReference: fmt.Sprintf("pay_dev_%d", job.ID),
		Amount:           job.Amount,
		Status:           models.PaymentStatusPaid,
	}
	if err := db.WithContext(ctx).Create(&payment).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed payment: %v\n", err)
		os.Exit(1)
	}

	token, err := utils.JwtGenerate(worker.ID, string(models.UserRoleWorker))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to mint worker token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded job %d (customer %d, worker %d, payment %d)\n", job.ID, customer.ID, worker.ID, payment.ID)
	fmt.Printf("worker bearer token:\n%s\n", token)
}
