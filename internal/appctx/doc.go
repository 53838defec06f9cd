// Package appctx is the runtime context and event the audit pipeline is
// invoked with.
//
// A Context carries the services a pipeline step reaches for (object
// store, item store, queue, RUM, Genvar) as interfaces. The harness fills
// them with emulators; a pipeline's own initialisation may replace the item
// store wholesale, which is what the Interceptor repairs.
package appctx
