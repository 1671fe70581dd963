//go:build wasm

package internal

import "sync"

var (
	once          sync.Once
	globalRuntime *Runtime
)

// GetRuntime returns the single runtime shared by the browser's event loop.
func GetRuntime() *Runtime {
	once.Do(func() {
		globalRuntime = NewRuntime()
	})

	return globalRuntime
}
