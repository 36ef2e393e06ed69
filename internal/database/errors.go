package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
	ErrorClassConnection
)

func (c ErrorClass) String() string {
	switch c {
	case ErrorClassTransient:
		return "transient"
	case ErrorClassDeadlock:
		return "deadlock"
	case ErrorClassSerialization:
		return "serialization"
	case ErrorClassConnection:
		return "connection"
	default:
		return "permanent"
	}
}

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "40001":
			return ErrorClassSerialization
		case pqErr.Code == "40P01":
			return ErrorClassDeadlock
		case pqErr.Code == "55P03", pqErr.Code == "57014":
			return ErrorClassTransient
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "57":
			return ErrorClassConnection
		}
		return ErrorClassPermanent
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return ErrorClassConnection
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorClassConnection
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	return ClassifyError(err) != ErrorClassPermanent
}

func constraintViolation(err error, code pq.ErrorCode) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == code {
		return pqErr.Constraint, true
	}
	return "", false
}

// IsForeignKeyViolation reports a 23503 error and the violated constraint name.
func IsForeignKeyViolation(err error) (string, bool) {
	return constraintViolation(err, "23503")
}

func IsUniqueViolation(err error) (string, bool) {
	return constraintViolation(err, "23505")
}

func IsCheckViolation(err error) (string, bool) {
	return constraintViolation(err, "23514")
}

// IsNumericOutOfRange reports a 22003 error: a value did not fit its column.
func IsNumericOutOfRange(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22003"
}

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrProductNotFound         = errors.New("product not found")
	ErrOrderNotFound           = errors.New("order not found")
	ErrCartNotFound            = errors.New("cart not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrNoPendingOrders         = errors.New("no pending orders")
)
