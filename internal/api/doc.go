// Package api handles incoming HTTP requests: body decoding and validation,
// calling the review and account services, and mapping results and errors to
// JSON responses.
//
// Handlers never expose internal error text. MapErrorToStatusCode and
// GetSafeErrorMessage translate sentinel errors, and anything unrecognised
// becomes a 500 with a generic message plus the request's trace ID.
package api
