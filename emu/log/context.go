package log

import "sync"

// A ContextAdder appends fields to every emitted entry (for example the
// current raster line and cycle of the emulated machine). AddLogContext may
// be called from any goroutine that logs.
type ContextAdder interface {
	AddLogContext(entry *EntryZ)
}

var (
	ctxMu    sync.RWMutex
	contexts []ContextAdder // copy on write
)

// AddContext registers a context adder.
func AddContext(c ContextAdder) {
	ctxMu.Lock()
	defer ctxMu.Unlock()
	contexts = append(contexts[:len(contexts):len(contexts)], c)
}

// RemoveContext unregisters a context adder previously added with AddContext.
func RemoveContext(c ContextAdder) {
	ctxMu.Lock()
	defer ctxMu.Unlock()
	for i := range contexts {
		if contexts[i] == c {
			contexts = append(contexts[:i:i], contexts[i+1:]...)
			return
		}
	}
}

func loadContexts() []ContextAdder {
	ctxMu.RLock()
	defer ctxMu.RUnlock()
	return contexts
}
