// Package errors provides the service-wide error type.
//
// AppError carries a machine-readable code, a user-facing message, the HTTP
// status to answer with and whether the caller may retry. Handlers render it
// with ToResponse; lower layers wrap plain errors with fmt.Errorf and let the
// conversion layer lift them into an AppError.
package errors
