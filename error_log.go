package slot

import "sync"

// errorLog is a thread-safe bounded log of recent errors, oldest first.
// A nil errorLog is valid and drops everything, mirroring the disabled case.
type errorLog struct {
	mu   sync.Mutex
	max  int
	errs []error
}

// newErrorLog creates an error log retaining up to max errors.
// If max is 0 or negative, the log is disabled.
func newErrorLog(max int) *errorLog {
	if max <= 0 {
		return nil
	}
	return &errorLog{max: max}
}

// push appends an error, evicting the oldest entry once the bound is hit.
func (l *errorLog) push(err error) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.errs = append(l.errs, err)
	if len(l.errs) > l.max {
		l.errs = l.errs[len(l.errs)-l.max:]
	}
}

// clear removes all retained errors.
func (l *errorLog) clear() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = nil
}

// all returns a copy of the retained errors, oldest first.
func (l *errorLog) all() []error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.errs) == 0 {
		return nil
	}
	out := make([]error, len(l.errs))
	copy(out, l.errs)
	return out
}
