// Package errs provides standardized error types for the fulfillment service.
//
// Every error type follows the same shape:
//   - a sentinel error variable (e.g. ErrValueIsRequired)
//   - a struct type carrying the details
//   - constructors with and without a cause
//   - Unwrap returning the sentinel, so callers classify with errors.Is
//
// ErrConflict marks expected concurrent outcomes (a lost conditional write,
// a duplicate unique key) that callers resolve by returning current state.
package errs
