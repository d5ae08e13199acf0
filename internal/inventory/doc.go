// Package inventory implements the client-side inventory controller.
//
// # Overview
//
// Controller owns the local view of the remote inventory: the items list, the
// create/edit form draft, the search query, and the user-facing message. It
// orchestrates every intent a frontend can issue (load, search, submit,
// delete, restock, purchase) through a Gateway and keeps the local view
// consistent with the remote source of truth by re-fetching the full list
// after every mutation. The local list is never patched in place; a fresh
// authoritative read replaces it wholesale.
//
// # Consistency
//
// Mutations are fire-and-refresh: the refresh runs whether the mutation
// succeeded or failed, so the displayed inventory never silently drifts from
// server truth behind a swallowed error. List and search responses carry a
// monotonic sequence; a response whose request has been superseded by a newer
// list or search is dropped, so out-of-order completions cannot overwrite a
// newer result with stale data.
//
// # Errors
//
// No failure escapes the controller. Local validation problems and remote
// failures both land in the snapshot's Message field; frontends render the
// message and decide for themselves how to react (e.g. forcing a logout when
// Unauthorized is set).
package inventory
