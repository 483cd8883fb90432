package catalog

import (
	"errors"
	"strings"
)

// Rejection reasons returned by ValidateQuery. Callers can test for a
// specific reason with errors.Is.
var (
	// ErrInjectionRisk indicates the query contains a SQL comment token.
	ErrInjectionRisk = errors.New("sql injection is not allowed")
	// ErrDeleteNotAllowed indicates the query contains a DELETE token.
	ErrDeleteNotAllowed = errors.New("delete operation is not allowed")
	// ErrUpdateNotAllowed indicates the query contains an UPDATE token.
	ErrUpdateNotAllowed = errors.New("update operation is not allowed")
	// ErrInsertNotAllowed indicates the query contains an INSERT token.
	ErrInsertNotAllowed = errors.New("insert operation is not allowed")
)

// ValidateQuery checks a free-form query against the catalog's denylist
// before execution.
//
// Four independent substring checks run in a fixed order, each with its own
// rejection: "--" (comment introducer), then the tokens DELETE, UPDATE and
// INSERT. Checks are case-sensitive and the first violation found is
// returned. A query that passes is forwarded to the storage layer verbatim.
//
// This is a denylist, not a parser: case variation or whitespace tricks can
// get past it. The catalog file is opened read-only, so the gate is a
// courtesy guard against accidental writes, not a security boundary.
func ValidateQuery(query string) error {
	if strings.Contains(query, "--") {
		return ErrInjectionRisk
	}
	if strings.Contains(query, "DELETE") {
		return ErrDeleteNotAllowed
	}
	if strings.Contains(query, "UPDATE") {
		return ErrUpdateNotAllowed
	}
	if strings.Contains(query, "INSERT") {
		return ErrInsertNotAllowed
	}
	return nil
}
