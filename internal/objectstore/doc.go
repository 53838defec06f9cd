// Package objectstore emulates the blob store the audit pipeline reads scrape
// artifacts from, over a local directory tree.
//
// Requests are a closed set of tagged variants consumed by a single
// dispatch function, Emulator.Send:
//
//	ListRequest -> *ListResponse   every file under root/prefix
//	GetRequest  -> *GetResponse    one file, or a NoSuchKey fault
//	PutRequest  -> *PutResponse    writes under the capture directory
//
// The same emulator serves both harnesses. The audit harness sets Root
// (and usually KeyPrefix) and reads sample data; the capture harness sets
// only OutDir, so every Get misses and every Put lands on disk mirroring its
// key.
//
// Listing walks the filesystem on every call; nothing is cached between
// calls. Traversal failures degrade to an empty listing.
package objectstore
