// Package openapi describes a form schema as an OpenAPI 3 document: one object
// schema for the values a submission carries, and an operation accepting it.
package openapi
