package trace

import (
	"sync"
	"time"

	"github.com/Comcast/rulebind/core"
	"github.com/Comcast/rulebind/util"
)

// Tracer records the bindings, value changes, and scope pushes and
// pops of a ScopedBindings into a session of a Log.
type Tracer struct {
	Log     *Log
	Session string

	// Now is used for event timestamps.  Defaults to time.Now.
	Now func() time.Time

	sync.Mutex
	detachers map[string]func()
}

// NewTracer makes a Tracer.
func NewTracer(l *Log, session string) *Tracer {
	return &Tracer{
		Log:       l,
		Session:   session,
		detachers: make(map[string]func()),
	}
}

func (t *Tracer) now() string {
	now := t.Now
	if now == nil {
		now = time.Now
	}
	return now().UTC().Format(time.RFC3339Nano)
}

func canonical(x interface{}) interface{} {
	y, err := core.Canonicalize(x)
	if err != nil {
		util.Warnf("trace can't canonicalize %#v: %s", x, err)
		return nil
	}
	return y
}

func (t *Tracer) record(e *Event) error {
	e.At = t.now()
	return t.Log.Record(t.Session, e)
}

// binding returns a listener for a scope's bindings.
func (t *Tracer) binding(scope string) core.BindingListener {
	return &core.BindingFuncs{
		Added: func(b *core.Binding) error {
			return t.record(&Event{
				Op:    OpBind,
				Scope: scope,
				Name:  b.Name(),
				Type:  b.Type().String(),
				New:   canonical(b.Value()),
			})
		},
		Changed: func(b *core.Binding, oldValue, newValue interface{}) error {
			return t.record(&Event{
				Op:    OpChange,
				Scope: scope,
				Name:  b.Name(),
				Type:  b.Type().String(),
				Old:   canonical(oldValue),
				New:   canonical(newValue),
			})
		},
	}
}

func (t *Tracer) watch(s *core.NamedScope) {
	remove := s.Bindings().AddBindingListener(t.binding(s.Name()))
	t.Lock()
	t.detachers[s.Name()] = remove
	t.Unlock()
}

func (t *Tracer) unwatch(name string) {
	t.Lock()
	remove, have := t.detachers[name]
	delete(t.detachers, name)
	t.Unlock()
	if have {
		remove()
	}
}

func (t *Tracer) ScopeAdded(s *core.NamedScope) error {
	t.watch(s)
	return t.record(&Event{
		Op:    OpPush,
		Scope: s.Name(),
	})
}

func (t *Tracer) ScopeRemoved(s *core.NamedScope) error {
	t.unwatch(s.Name())
	return t.record(&Event{
		Op:    OpPop,
		Scope: s.Name(),
	})
}

// Attach starts recording.  Scopes already on the stack are watched
// but not recorded as pushes.  Bindings already present are not
// recorded.
//
// The returned function stops recording.
func (t *Tracer) Attach(sb *core.ScopedBindings) (detach func()) {
	for _, s := range sb.Scopes() {
		t.watch(s)
	}
	remove := sb.AddScopeListener(t)
	return func() {
		remove()
		t.Lock()
		ds := t.detachers
		t.detachers = make(map[string]func())
		t.Unlock()
		for _, d := range ds {
			d()
		}
	}
}
