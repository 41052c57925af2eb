// Package ldbstore implements a replay memory that keeps experiences
// on disk in a LevelDB database, rather than in memory.
//
// It is substantially slower than the in-memory equivalent but can scale to
// replay histories that do not fit in memory.
package ldbstore
