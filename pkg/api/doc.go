// Package api is the client for the publishing templates REST API. Client
// speaks HTTP, CachedStore keeps per-task template lists and drops them
// whenever a write goes through it.
package api
