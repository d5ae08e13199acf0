// Package session owns the bearer credential for the sweet shop client.
//
// # Overview
//
// A Store holds the access token issued by the remote service at login and
// persists it to a token file so the session survives restarts. The store is
// the single source of truth for the caller's role: the role is always derived
// from the token's claims, never stored separately, so clearing the token
// reverts the caller to customer.
//
// # Trust Boundary
//
// Claims are decoded WITHOUT signature verification. The remote service issued
// the token and re-checks authorization on every request; the decoded role is
// only used to decide which controls the frontends offer. A forged token makes
// the UI show admin controls, but every privileged request still fails with
// 401/403 at the server.
//
// # Usage
//
//	store := session.New(tokenPath)
//	store.LoadFromDisk()
//	if store.Role() == session.RoleAdmin { ... }
package session
