// Package goroutine launches background work that must not take the
// process down with it.
package goroutine

import (
	"fmt"
	"runtime/debug"

	"skillforge/internal/shared/logger"
)

// SafeGo runs fn on its own goroutine behind a recover. A panic is logged
// under the given name, with its stack, and swallowed. Used for fire-and-
// forget work such as audit writes, where the request has already been
// answered.
func SafeGo(log logger.Interface, name string, fn func()) {
	go func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Errorw("goroutine panicked",
				"goroutine", name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}()
		fn()
	}()
}
