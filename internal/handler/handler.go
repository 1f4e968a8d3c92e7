// Package handler is the HTTP layer behind the router.
//
// It checks path parameters, decodes and validates bodies through the
// validation package, calls the service layer and shapes the JSON
// response. Errors are returned to the global error handler.
package handler
