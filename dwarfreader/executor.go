package dwarfreader

// executor serialises every DWARF call onto one dedicated goroutine.
// DWARF parsing is single-threaded by contract; concurrent callers
// queue here instead of racing the reader.
type executor struct {
	tasks chan func()
	done  chan struct{}
}

func newExecutor() *executor {
	e := &executor{
		tasks: make(chan func()),
		done:  make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *executor) loop() {
	for {
		select {
		case task, ok := <-e.tasks:
			if !ok {
				close(e.done)
				return
			}
			task()
		}
	}
}

// run submits fn to the executor and blocks until it has completed.
func (e *executor) run(fn func()) {
	reply := make(chan struct{})
	e.tasks <- func() {
		fn()
		close(reply)
	}
	<-reply
}

// close stops the executor's goroutine. Safe to call once; a later run
// call panics (send on a closed channel), flagging a use-after-close bug
// in the caller.
func (e *executor) close() {
	close(e.tasks)
	<-e.done
}
