package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ErrorKind classifies engine failures so callers can tell retryable
// conflicts from permanent rejections.
type ErrorKind string

const (
	ErrValidation   ErrorKind = "validation"   // malformed input, rejected before any state change
	ErrConflict     ErrorKind = "conflict"     // duplicate pending submission/appeal/report, self-review
	ErrPrecondition ErrorKind = "precondition" // transition attempted from a non-matching state
	ErrNotFound     ErrorKind = "not_found"
)

type EngineError struct {
	Kind    ErrorKind
	Message string
}

func (e *EngineError) Error() string { return e.Message }

func errValidation(format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func errConflict(format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func errPrecondition(format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: ErrPrecondition, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...interface{}) *EngineError {
	return &EngineError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps the taxonomy onto response codes.
func (e *EngineError) HTTPStatus() int {
	switch e.Kind {
	case ErrValidation:
		return fiber.StatusBadRequest
	case ErrConflict:
		return fiber.StatusConflict
	case ErrPrecondition:
		return fiber.StatusUnprocessableEntity
	case ErrNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondError writes an engine error as JSON; anything else becomes a 500.
func RespondError(c *fiber.Ctx, err error) error {
	var ee *EngineError
	if errors.As(err, &ee) {
		return c.Status(ee.HTTPStatus()).JSON(fiber.Map{
			"error": ee.Message,
			"kind":  string(ee.Kind),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
		"cause": err.Error(),
	})
}

// isDuplicateErr reports whether err is a uniqueness-constraint violation.
// GORM translates these for the postgres driver; the sqlite driver used in
// tests surfaces the raw constraint message, so we match that too.
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
