// Package repository provides a CRUD facade over one named table. Rows are
// untyped column maps; queries are built with Bun and returned lazily as
// chainable Selections. The only error produced here is NotFound, raised by
// primary key lookups and deletes; every other error comes from the driver
// unchanged.
package repository
