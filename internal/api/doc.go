// Package api implements the HTTP client for the sweet shop service.
//
// # Overview
//
// Client is the single chokepoint for network I/O: every domain operation
// (auth, inventory CRUD, restock, purchase, search) maps to one HTTP request
// against the service's /api/v1 surface. The current bearer credential is
// pulled from a TokenSource on every call, so a login or logout takes effect
// immediately without rebuilding the client.
//
// # Calls
//
// All calls are single-shot and non-retrying; transient network failures are
// surfaced to the caller, not masked. Remote failures are normalized into
// *APIError carrying the HTTP status and the detail message from the error
// body. Classify with IsAuth, IsNotFound, and IsConflict.
//
// # Usage
//
//	client := api.New("http://localhost:8000", store, logger)
//	sweets, err := client.List(ctx)
package api
