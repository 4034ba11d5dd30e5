package vango

import "runtime"

// getGoroutineID returns a unique identifier for the current goroutine.
// It is only used to detect re-entrant Runtime.Do calls from the loop.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// The stack starts with "goroutine <id> "
	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
