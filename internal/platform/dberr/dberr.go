// Copyright (c) 2026 WebNDB. All rights reserved.
// Author: dev@webndb.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/webndb/webndb/internal/platform/apperr"
)

// Relevant PostgreSQL SQLSTATE codes.
const (
	codeForeignKeyViolation  = "23503"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. SQLSTATE classification
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return apperr.Unprocessable("Referenced resource does not exist")
		case codeUniqueViolation:
			return apperr.Conflict("Resource already exists")
		case codeCheckViolation:
			return apperr.Unprocessable("Value violates a storage constraint")
		case codeSerializationFailure, codeDeadlockDetected:
			// A concurrent transaction won the race; the caller may retry.
			return apperr.ConflictRetryable("Concurrent modification, please retry")
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}
