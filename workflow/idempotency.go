package workflow

import (
	"errors"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"gorm.io/gorm"
)

var ErrIdempotencyInProgress = errors.New("idempotency in progress")

func isDuplicateKeyErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// BeginRefundIdempotency inserts STARTED for (handler, assignment).
// If SUCCEEDED exists, returns (true, nil) meaning "skip safely": the refund
// already went through on a previous delivery attempt.
func BeginRefundIdempotency(tx *gorm.DB, handlerName string, assignmentId int) (skip bool, err error) {
	key := models.RefundIdempotencyKey{
		HandlerName:  handlerName,
		AssignmentId: assignmentId,
		Status:       models.IdempotencyStatusStarted,
	}
	if err := tx.Create(&key).Error; err == nil {
		return false, nil
	} else if !isDuplicateKeyErr(err) {
		return false, err
	}

	var existing models.RefundIdempotencyKey
	if err := tx.Where("handler_name = ? AND assignment_id = ?", handlerName, assignmentId).
		First(&existing).Error; err != nil {
		return false, err
	}

	switch existing.Status {
	case models.IdempotencyStatusSucceeded:
		return true, nil
	case models.IdempotencyStatusStarted:
		// Another dispatcher may be mid-call; let the outbox retry later
		// unless the row is stale.
		if time.Since(existing.UpdatedAt) < 5*time.Minute {
			return false, ErrIdempotencyInProgress
		}
		return false, tx.Model(&models.RefundIdempotencyKey{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{"status": models.IdempotencyStatusStarted, "last_error": nil}).Error
	default:
		return false, tx.Model(&models.RefundIdempotencyKey{}).
			Where("id = ?", existing.ID).
			Updates(map[string]interface{}{"status": models.IdempotencyStatusStarted, "last_error": nil}).Error
	}
}

func MarkRefundIdempotencySucceeded(tx *gorm.DB, handlerName string, assignmentId int) error {
	return tx.Model(&models.RefundIdempotencyKey{}).
		Where("handler_name = ? AND assignment_id = ?", handlerName, assignmentId).
		Updates(map[string]interface{}{"status": models.IdempotencyStatusSucceeded, "last_error": nil}).Error
}

func MarkRefundIdempotencyFailed(tx *gorm.DB, handlerName string, assignmentId int, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return tx.Model(&models.RefundIdempotencyKey{}).
		Where("handler_name = ? AND assignment_id = ?", handlerName, assignmentId).
		Updates(map[string]interface{}{"status": models.IdempotencyStatusFailed, "last_error": &msg}).Error
}
