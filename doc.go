// Package apc provides a small cache-entry facade over pluggable key/value
// backends.
//
// An [Entry] binds a logical key to one backend slot. The key is hashed
// (MD5 by default) so arbitrary strings map to fixed-shape slot names, and
// every write carries the TTL chosen at construction. Storage, expiry,
// eviction and concurrency are the backend's business; see
// [github.com/dmitrymomot/apc/pkg/cache] for the contract and the shipped
// backends (in-process, ttlcache, Redis, bbolt, PostgreSQL).
//
// # Quick Start
//
//	backend := cache.NewMemory[string]()
//	defer backend.Close()
//
//	e, err := apc.New(backend, "some_key", 40*time.Second)
//	if err != nil {
//	    return err
//	}
//
//	if err := e.Set(ctx, "foo"); err != nil {
//	    return err
//	}
//	v, err := e.Get(ctx) // "foo"
//
// # Explicit and Value-Style Access
//
// Set, Get, Exists and Delete return errors. Their value-style twins
// degrade instead:
//
//   - [Entry.Value] returns (zero, false) when the slot cannot be fetched
//   - [Entry.HasValue] reports backend errors as absence
//   - [Entry.ClearValue] discards the deletion result
//   - [Entry.String] renders the value, or "" when it cannot be fetched
//
// [Entry.SetValue] keeps its error: writes never fail silently.
//
// # Clearing
//
// [Clear] empties a backend by scope: "all", "user" or "opcode".
// The backend is passed explicitly; there is no process-wide cache.
//
//	err := apc.Clear(ctx, backend, apc.ScopeUser)
//
// # Error Handling
//
//   - [ErrConfiguration] - no backend supplied
//   - [ErrInvalidArgument] - empty key, bad TTL, unknown clear scope
//   - [ErrRetrieval] - Get could not fetch the value
//   - [ErrDeletion] - Delete did not remove the slot
//   - [ErrStore] - Set could not write
//   - [ErrClear] - Clear could not empty a segment
//
// Backend causes are joined to these errors, so both checks work:
//
//	_, err := e.Get(ctx)
//	errors.Is(err, apc.ErrRetrieval)   // true
//	errors.Is(err, cache.ErrNotFound)  // true when the slot is absent
package apc
