// Package dataaccess defines the item-store capability set the audit
// pipeline expects on its context: read-only record views over plain data
// bags, and one collection interface per record variant.
//
// A DataAccess value is a set of optional collections. A nil field means the
// collection is absent; the harness relies on this when merging its local
// mocks into a store the pipeline built itself.
package dataaccess
