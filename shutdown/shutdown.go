package shutdown

import "os"

// OnSignal runs fn in a new goroutine when the process is asked to terminate.
func OnSignal(fn func()) {
	ch := make(chan os.Signal, 1)
	Notify(ch)
	go func() {
		<-ch
		fn()
	}()
}
