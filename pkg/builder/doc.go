// Package builder holds the state of one form building session: the schema
// being edited, the values typed into its preview, and the set of fields those
// values make visible. Persistence is delegated to a Saver.
package builder
