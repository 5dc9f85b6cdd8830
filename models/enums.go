package models

import "errors"

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusAssigned   JobStatus = "ASSIGNED"
	JobStatusAccepted   JobStatus = "ACCEPTED"
	JobStatusInProgress JobStatus = "IN_PROGRESS"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

type AssignmentStatus string

const (
	AssignmentStatusPending  AssignmentStatus = "PENDING"
	AssignmentStatusAccepted AssignmentStatus = "ACCEPTED"
	AssignmentStatusDeclined AssignmentStatus = "DECLINED"
	AssignmentStatusExpired  AssignmentStatus = "EXPIRED"
	AssignmentStatusNoShow   AssignmentStatus = "NO_SHOW"
)

type ExecutionStatus string

const (
	ExecutionStatusNotStarted ExecutionStatus = "NOT_STARTED"
	ExecutionStatusCheckedIn  ExecutionStatus = "CHECKED_IN"
	ExecutionStatusInProgress ExecutionStatus = "IN_PROGRESS"
	ExecutionStatusCompleted  ExecutionStatus = "COMPLETED"
)

// ExecutionAction is the closed set of worker actions on an execution.
// Parse at the API boundary so the controller can switch exhaustively on a
// typed value instead of falling through on misspelled strings.
type ExecutionAction string

const (
	ExecutionActionCheckIn  ExecutionAction = "CHECK_IN"
	ExecutionActionStart    ExecutionAction = "START"
	ExecutionActionComplete ExecutionAction = "COMPLETE"
)

var ErrUnknownExecutionAction = errors.New("unknown execution action")

func ParseExecutionAction(s string) (ExecutionAction, error) {
	switch s {
	case "CHECK_IN":
		return ExecutionActionCheckIn, nil
	case "START":
		return ExecutionActionStart, nil
	case "COMPLETE":
		return ExecutionActionComplete, nil
	default:
		return "", ErrUnknownExecutionAction
	}
}

type PhotoTag string

const (
	PhotoTagBefore PhotoTag = "BEFORE"
	PhotoTagAfter  PhotoTag = "AFTER"
)

type PaymentStatus string

const (
	PaymentStatusPaid         PaymentStatus = "PAID"
	PaymentStatusRefunded     PaymentStatus = "REFUNDED"
	PaymentStatusRefundFailed PaymentStatus = "REFUND_FAILED"
)

type WorkerAccountStatus string

const (
	WorkerAccountStatusActive    WorkerAccountStatus = "ACTIVE"
	WorkerAccountStatusSuspended WorkerAccountStatus = "SUSPENDED"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "A"
	UserRoleWorker   UserRole = "W"
	UserRoleCustomer UserRole = "C"
)
