// Package testing provides test utilities for the Stratum library.
//
// This package offers helpers for setting up test environments: embedded NATS
// servers for worker-id claiming tests, in-memory entities for authority tests,
// and a logger that writes through testing.T. It follows Go's convention of
// providing testing utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - StartEmbeddedJetStream: Embedded server plus a ready JetStream context
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewEntity: In-memory types.Entity with a mutable position
//   - NewTestLogger: types.Logger backed by t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    stratumtest "github.com/arloliu/stratum/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    js := stratumtest.StartEmbeddedJetStream(t)
//	    // Use js for your tests
//	}
package testing
