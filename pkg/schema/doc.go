// Package schema defines the in-memory form definition edited by the builder:
// typed fields with a shared base record and a type-indexed configuration
// payload, visibility conditions, and the ordered Store that owns one form.
// Every operation returns fresh values; slices handed to callers are never
// shared with the Store, so a reader cannot observe a half-applied edit.
package schema
