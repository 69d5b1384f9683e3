package corosched

import (
	"errors"
	"fmt"
	"strings"
)

// Frame is one entry of a CoException's virtual backtrace: the name of the
// (sub)coroutine that was unwinding, and the sequence number of the frame
// within its Task, assigned at the moment the frame was recorded.
type Frame struct {
	Coroutine string
	Seq       int
}

func (f Frame) String() string {
	return fmt.Sprintf("%s, frame %d", f.Coroutine, f.Seq)
}

// CoException carries an originating error plus the virtual backtrace
// accumulated as it unwound through nested subcoroutines: frames are
// ordered innermost-raised first, outermost-caller last.
type CoException struct {
	Original error
	frames   []Frame
}

func (e *CoException) Error() string {
	var b strings.Builder
	for _, f := range e.frames {
		b.WriteString(f.String())
		b.WriteString("\n")
	}
	b.WriteString(e.Original.Error())
	return b.String()
}

// Unwrap returns the originating error, for use with errors.Is/errors.As.
func (e *CoException) Unwrap() error {
	return e.Original
}

// Frames returns a copy of the accumulated virtual backtrace, innermost
// first.
func (e *CoException) Frames() []Frame {
	return append([]Frame(nil), e.frames...)
}

// wrapException records a new frame on the unwind path of err. If err is
// already (or wraps) a *CoException, the frame is appended to a clone of its
// existing backtrace, preserving the original error; otherwise a fresh
// CoException is started.
func wrapException(err error, frame Frame) *CoException {
	var ce *CoException
	if errors.As(err, &ce) {
		return &CoException{
			Original: ce.Original,
			frames:   append(append([]Frame(nil), ce.frames...), frame),
		}
	}
	return &CoException{Original: err, frames: []Frame{frame}}
}
