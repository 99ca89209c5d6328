// Package api is the consumer-facing surface of shelve. Service wires the
// category table, organizer, record store, and undo engine from one Config
// and exposes the operations the CLI calls.
//
// Every call names its folder or record explicitly; Service keeps no
// selection state between calls.
package api
