package action

import (
	"context"
	"fmt"
)

// Outcome is the settled value of a Pending result.
type Outcome struct {
	Message string
	Err     error
}

type resultKind int

const (
	kindImmediate resultKind = iota
	kindPending
)

// Result is either Immediate (already settled) or Pending (settles later on
// a channel). Handlers construct one explicitly; the zero value is an empty
// Immediate result.
type Result struct {
	kind    resultKind
	message string
	pending <-chan Outcome
}

// Immediate returns an already settled result.
func Immediate(msg string) Result {
	return Result{kind: kindImmediate, message: msg}
}

// Pending returns a result that settles when ch delivers an Outcome.
// A channel closed without a value settles as success.
func Pending(ch <-chan Outcome) Result {
	return Result{kind: kindPending, pending: ch}
}

// Go runs fn on its own goroutine and returns a Pending result for it.
// A panic in fn settles the result as a failure.
func Go(ctx context.Context, fn func(ctx context.Context) (string, error)) Result {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				ch <- Outcome{Err: fmt.Errorf("panic: %v", r)}
			}
		}()
		msg, err := fn(ctx)
		ch <- Outcome{Message: msg, Err: err}
	}()
	return Pending(ch)
}

// IsPending reports whether the result settles asynchronously.
func (r Result) IsPending() bool { return r.kind == kindPending }

// Await blocks until the result settles. Cancelling ctx stops waiting but
// does not stop the underlying work; use Settle to wait for it.
func (r Result) Await(ctx context.Context) (string, error) {
	if r.kind == kindImmediate {
		return r.message, nil
	}
	if r.pending == nil {
		return "", nil
	}
	select {
	case out, ok := <-r.pending:
		if !ok {
			return "", nil
		}
		return out.Message, out.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Settle blocks until a Pending result delivers its outcome or closes its
// channel, ignoring cancellation. Call it only when Await gave up on ctx.
// Work started with Go sees the cancelled context and returns promptly.
func (r Result) Settle() {
	if r.kind != kindPending || r.pending == nil {
		return
	}
	<-r.pending
}
