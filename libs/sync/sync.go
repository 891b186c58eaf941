//go:build !deadlock
// +build !deadlock

// Package sync provides the mutex types used across alexandria. Building with
// the deadlock tag swaps them for go-deadlock instrumented locks.
package sync

import "sync"

// A Mutex is a mutual exclusion lock.
type Mutex struct {
	sync.Mutex
}

// An RWMutex is a reader/writer mutual exclusion lock.
type RWMutex struct {
	sync.RWMutex
}
