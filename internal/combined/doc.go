// Package combined provides interaction benchmarks that run the MPMC
// queue under several producers and consumers at once, next to a
// buffered channel and the sharded go-lock-free-ring.
//
// These benchmarks are more representative of real-world performance
// than isolated micro-benchmarks, as they capture contention on the
// cursors and the cost of full/empty retries.
package combined
