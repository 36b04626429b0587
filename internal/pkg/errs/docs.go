// Package errs provides standardized error types for the packing service.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping that is used throughout the application.
//
// The package covers the error kinds the service returns to callers:
//   - ObjectNotFoundError: a referenced session or order does not exist
//   - ValueIsInvalidError / ValueIsRequiredError / ValueIsOutOfRangeError:
//     validation failures the caller must correct before retrying
//   - VersionConflictError: a packing mutation lost an optimistic-concurrency
//     race and the caller must re-read and retry
//   - ObjectAlreadyExistsError: an insert lost a unique-constraint race and
//     the caller should re-read and proceed against the existing object
//   - VersionIsInvalidError: a malformed concurrency token
//
// Each error type follows the same pattern:
//   - A sentinel error variable (e.g. ErrObjectNotFound) for errors.Is checks
//   - A struct type carrying the error details
//   - Constructor functions with and without an underlying cause
//   - Error() for single-line formatting and Unwrap() for error chains
//
// None of these errors are retried automatically anywhere in the application;
// retry policy belongs to the caller.
package errs
