package repository

import "errors"

var ErrIdempotencyKeyConflict = errors.New("idempotency key conflicts with request")
var ErrNotFound = errors.New("record not found")
var ErrInvalidID = errors.New("invalid id")
var ErrConstraintViolation = errors.New("unique constraint violation")
var ErrDeleteFailed = errors.New("delete affected no rows")
