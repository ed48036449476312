// Package codec converts between the in-memory schema model and the portable
// wire schema: a JSON (or YAML) array of field objects. Encoding strips the
// internal field ids and always spells out "conditions", using null when a
// field has none. Decoding assigns fresh ids, normalises the legacy
// index-keyed option maps into ordered slices, and either returns the whole
// schema or an *ImportError, never a partial result.
package codec
