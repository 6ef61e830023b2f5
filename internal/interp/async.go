package interp

import (
	"reflect"
	"sync"

	"github.com/formalang/forma/internal/ast"
	"github.com/google/uuid"
)

// task is the payload behind every Value tagged TaskVal: a goroutine
// computing Body, reporting its outcome on done exactly once. Tasks,
// channels and mutexes are each assigned a uuid the way the teacher assigns
// ids to its own shared runtime tables; the id is kept on the payload and
// is not exposed to FORMA source (Inspect prints only the tag, `<Task>`).
//
// cancelled is closed by await_any's loser-cancellation path once a sibling
// task wins the race; the evaluator itself has no cooperative checkpoint
// inside a running block, so a cancelled task still runs to completion, but
// its result is discarded by whoever requested the cancellation and any
// future code that wants a cancellation-aware native loop (the driver's own
// blocking builtins, for instance) has a real channel to select on.
type task struct {
	id          string
	done        chan struct{}
	cancelled   chan struct{}
	cancelOnce  sync.Once
	result      Value
	err         error
}

func newTask() *task {
	return &task{id: uuid.NewString(), done: make(chan struct{}), cancelled: make(chan struct{})}
}

func (t *task) cancel() {
	t.cancelOnce.Do(func() { close(t.cancelled) })
}

func (i *Interp) evalAsync(n *ast.AsyncBlockExpr, scope *Env) (Value, error) {
	t := newTask()
	go func() {
		defer close(t.done)
		v, err := i.evalBlock(n.Body, scope)
		if err != nil {
			if er, ok := err.(*earlyReturn); ok {
				t.result = er.Value
				return
			}
			t.err = err
			return
		}
		if rs, ok := v.(ReturnSignal); ok {
			t.result = rs.Value
		} else {
			t.result = v
		}
	}()
	return Opaque{Tag: TaskVal, Data: t}, nil
}

func (i *Interp) evalAwait(n *ast.AwaitExpr, scope *Env) (Value, error) {
	v, err := i.evalExpr(n.X, scope)
	if err != nil {
		return nil, err
	}
	op, ok := v.(Opaque)
	if !ok || op.Tag != TaskVal {
		return v, nil
	}
	t := op.Data.(*task)
	<-t.done
	if t.err != nil {
		return nil, t.err
	}
	return t.result, nil
}

// asTasks converts a List of Task values into their underlying *task
// payloads, failing if any element isn't actually a Task.
func asTasks(v Value) ([]*task, bool) {
	list, ok := v.(List)
	if !ok {
		return nil, false
	}
	out := make([]*task, len(list.Elements))
	for idx, e := range list.Elements {
		op, ok := e.(Opaque)
		if !ok || op.Tag != TaskVal {
			return nil, false
		}
		out[idx] = op.Data.(*task)
	}
	return out, true
}

// awaitAll waits for every task to finish, in the order given, and returns
// the first error encountered (without cancelling the others -- unlike
// await_any, an all-of wait has no losers).
func awaitAll(tasks []*task) (Value, error) {
	results := make([]Value, len(tasks))
	for idx, t := range tasks {
		<-t.done
		if t.err != nil {
			return nil, t.err
		}
		results[idx] = t.result
	}
	return List{Elements: results}, nil
}

// awaitAny blocks until the first of tasks completes, then cancels every
// other task (the "losers") before returning the winner's outcome.
func awaitAny(tasks []*task) (Value, error) {
	cases := make([]reflect.SelectCase, len(tasks))
	for idx, t := range tasks {
		cases[idx] = reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(t.done)}
	}
	chosen, _, _ := reflect.Select(cases)
	winner := tasks[chosen]
	for idx, t := range tasks {
		if idx != chosen {
			t.cancel()
		}
	}
	if winner.err != nil {
		return nil, winner.err
	}
	return winner.result, nil
}

// channel is the payload behind ChannelVal: a FIFO of Values buffered to
// the given capacity (unbuffered when the capacity is 0), the runtime form
// of `Channel<T>`.
type channel struct {
	id string
	ch chan Value
}

func newChannel(capacity int) Value {
	return Opaque{Tag: ChannelVal, Data: &channel{id: uuid.NewString(), ch: make(chan Value, capacity)}}
}

// mutex is the payload behind MutexVal.
type mutexBox struct {
	id   string
	lock chan struct{}
}

func newMutex() Value {
	m := &mutexBox{id: uuid.NewString(), lock: make(chan struct{}, 1)}
	return Opaque{Tag: MutexVal, Data: m}
}

func (c *channel) send(v Value)      { c.ch <- v }
func (c *channel) recv() Value       { return <-c.ch }

func (c *channel) trySend(v Value) bool {
	select {
	case c.ch <- v:
		return true
	default:
		return false
	}
}

func (c *channel) tryRecv() (Value, bool) {
	select {
	case v := <-c.ch:
		return v, true
	default:
		return nil, false
	}
}

func (m *mutexBox) acquire()   { m.lock <- struct{}{} }
func (m *mutexBox) release()   { <-m.lock }

func (m *mutexBox) tryAcquire() bool {
	select {
	case m.lock <- struct{}{}:
		return true
	default:
		return false
	}
}
