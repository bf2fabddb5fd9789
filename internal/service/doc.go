// Package service contains the application use cases that sit between the
// HTTP layer and the stores.
//
// Services receive their stores and a store.TxRunner through constructor
// injection, apply transactional boundaries where an operation spans more
// than one write, and translate store errors into the sentinel errors the
// API layer maps to status codes.
//
// Account management lives here. Review scheduling lives in the review
// subpackage and token handling in auth.
package service
