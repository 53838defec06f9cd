// Package probe is a built-in audit pipeline that exercises every emulated
// service against local data.
//
// It checks the page title of every scraped page, records the findings as
// an audit, turns missing titles into an opportunity with one suggestion
// per page, reads the suggestions back and queues a guidance message. It is
// what `auditlocal run` executes when no other pipeline is linked in, and it
// doubles as an end-to-end check of the local data directory.
package probe
