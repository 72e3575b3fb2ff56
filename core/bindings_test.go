package core

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Comcast/rulebind/types"
	"github.com/Comcast/rulebind/util/testutil"
)

func mustBindValue(t *testing.T, env Environment, name string, typ types.Type, v interface{}) *Binding {
	t.Helper()
	b, err := env.BindValue(name, typ, v)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestBindingsUnique(t *testing.T) {
	bs := NewBindings()
	mustBindValue(t, bs, "a", types.StringType, "hello")

	_, err := bs.BindValue("a", types.StringType, "again")
	var ae *AlreadyExists
	if !errors.As(err, &ae) {
		t.Fatalf("wanted AlreadyExists, not %v", err)
	}
	if ae.Name != "a" {
		t.Fatal(ae.Name)
	}
	if v, _ := ValueAs[string](bs.Get("a")); v != "hello" {
		t.Fatal(v)
	}
}

func TestBindingsByType(t *testing.T) {
	bs := NewBindings()
	mustBindValue(t, bs, "a", types.StringType, "hello")
	mustBindValue(t, bs, "b", types.IntType, 25)

	if got := testutil.Names(bs.GetByType(types.StringType)); !testutil.SameStrings(got, []string{"a"}) {
		t.Fatal(got)
	}
	if got := testutil.Names(bs.GetByType(types.ObjectType)); !testutil.SameStrings(got, []string{"a", "b"}) {
		t.Fatal(got)
	}
	if got := testutil.Names(bs.GetByTypeLoose(types.ObjectType)); !testutil.SameStrings(got, []string{"a", "b"}) {
		t.Fatal(got)
	}
}

func TestBindingsGetTyped(t *testing.T) {
	bs := NewBindings()
	mustBindValue(t, bs, "x", types.IntType, 250)

	if b := bs.GetTyped("x", types.IntType); b == nil {
		t.Fatal("nil")
	}
	if b := bs.GetTyped("x", types.StringType); b != nil {
		t.Fatal(b)
	}
	if n, ok := Lookup[int](bs, "x"); !ok || n != 250 {
		t.Fatal(n, ok)
	}
	if _, ok := Lookup[string](bs, "x"); ok {
		t.Fatal("string?")
	}
	if _, ok := Lookup[int](bs, "y"); ok {
		t.Fatal("y?")
	}
}

func TestBindingsReserved(t *testing.T) {
	bs := NewBindings()
	_, err := bs.BindValue("bindings", types.ObjectType, nil)
	var rn *ReservedName
	if !errors.As(err, &rn) {
		t.Fatalf("wanted ReservedName, not %v", err)
	}

	bs = NewBindings(WithReservedNames(NewReservedNames("x")))
	if _, err = bs.BindValue("bindings", types.ObjectType, nil); err != nil {
		t.Fatal(err)
	}
	if _, err = bs.BindValue("x", types.ObjectType, nil); !errors.As(err, &rn) {
		t.Fatalf("wanted ReservedName, not %v", err)
	}
}

func TestBindingBuild(t *testing.T) {
	if _, err := NewBinding("1x").Build(); err == nil {
		t.Fatal("should have complained about the name")
	}

	var tm *TypeMismatch
	if _, err := NewBinding("x").Type(types.IntType).Value("hello").Build(); !errors.As(err, &tm) {
		t.Fatalf("wanted TypeMismatch, not %v", err)
	}

	b := NewBinding("n").Type(types.IntType).MustBuild()
	if b.Value() != 0 {
		t.Fatal(b.Value())
	}

	b = NewBinding("s").Value("hello").MustBuild()
	if !b.Type().Equal(types.StringType) {
		t.Fatal(b.Type())
	}

	b = NewBinding("o").MustBuild()
	if !b.Type().Equal(types.ObjectType) || b.Value() != nil {
		t.Fatal(b)
	}
}

func TestBindingSetValue(t *testing.T) {
	b := NewBinding("x").Type(types.IntType).Value(1).MustBuild()

	var tm *TypeMismatch
	if err := b.SetValue("one"); !errors.As(err, &tm) {
		t.Fatalf("wanted TypeMismatch, not %v", err)
	}
	if err := b.SetValue(2); err != nil {
		t.Fatal(err)
	}
	if b.Value() != 2 {
		t.Fatal(b.Value())
	}

	c := NewBinding("c").Value(1).Immutable().MustBuild()
	var im *Immutable
	if err := c.SetValue(2); !errors.As(err, &im) {
		t.Fatalf("wanted Immutable, not %v", err)
	}
	if c.Value() != 1 {
		t.Fatal(c.Value())
	}
}

// An immutable view delegates to the original: it sees later changes
// but can't make any.
func TestBindingViewDelegates(t *testing.T) {
	b := NewBinding("x").Type(types.IntType).Value(1).MustBuild()
	v := b.AsImmutable()

	if !v.IsView() || v.IsMutable() {
		t.Fatal("not a view")
	}
	if !v.Same(b) || v.ID() != b.ID() {
		t.Fatal("not the same binding")
	}

	var im *Immutable
	if err := v.SetValue(2); !errors.As(err, &im) {
		t.Fatalf("wanted Immutable, not %v", err)
	}
	if err := b.SetValue(3); err != nil {
		t.Fatal(err)
	}
	if v.Value() != 3 {
		t.Fatal(v.Value())
	}
	if v.AsImmutable() != v {
		t.Fatal("view of a view")
	}
}

func TestChangeListeners(t *testing.T) {
	var (
		heard []string
		oops  = errors.New("oops")
	)
	b := NewBinding("x").Value(1).
		Listener(ChangeFunc(func(b *Binding, old, new interface{}) error {
			heard = append(heard, "first")
			return oops
		})).
		Listener(ChangeFunc(func(b *Binding, old, new interface{}) error {
			if old != 1 || new != 2 {
				t.Fatal(old, new)
			}
			heard = append(heard, "second")
			return nil
		})).
		MustBuild()

	err := b.SetValue(2)
	var lf *ListenerFailed
	if !errors.As(err, &lf) {
		t.Fatalf("wanted ListenerFailed, not %v", err)
	}
	if !errors.Is(err, oops) {
		t.Fatal(err)
	}
	if !testutil.SameStrings(heard, []string{"first", "second"}) {
		t.Fatal(heard)
	}
	if b.Value() != 2 {
		t.Fatal(b.Value())
	}
}

func TestChangeListenerRemove(t *testing.T) {
	b := NewBinding("x").Value(1).MustBuild()
	n := 0
	remove := b.AddChangeListener(ChangeFunc(func(b *Binding, old, new interface{}) error {
		n++
		return nil
	}))
	if b.ChangeListenerCount() != 1 {
		t.Fatal(b.ChangeListenerCount())
	}
	b.SetValue(2)
	remove()
	b.SetValue(3)
	if n != 1 {
		t.Fatal(n)
	}
	if b.ChangeListenerCount() != 0 {
		t.Fatal(b.ChangeListenerCount())
	}
}

func TestBindingsListener(t *testing.T) {
	var added, changed []string
	bs := NewBindings()
	remove := bs.AddBindingListener(&BindingFuncs{
		Added: func(b *Binding) error {
			added = append(added, b.Name())
			return nil
		},
		Changed: func(b *Binding, old, new interface{}) error {
			changed = append(changed, b.Name())
			return nil
		},
	})

	x := mustBindValue(t, bs, "x", types.IntType, 1)
	mustBindValue(t, bs, "y", types.IntType, 1)
	if err := x.SetValue(2); err != nil {
		t.Fatal(err)
	}

	if err := bs.Remove("x"); err != nil {
		t.Fatal(err)
	}
	if x.ChangeListenerCount() != 0 {
		t.Fatal(x.ChangeListenerCount())
	}
	x.SetValue(3)

	remove()
	mustBindValue(t, bs, "z", types.IntType, 1)

	if !testutil.SameStrings(added, []string{"x", "y"}) {
		t.Fatal(added)
	}
	if !testutil.SameStrings(changed, []string{"x"}) {
		t.Fatal(changed)
	}

	var nsb *NoSuchBinding
	if err := bs.Remove("x"); !errors.As(err, &nsb) {
		t.Fatalf("wanted NoSuchBinding, not %v", err)
	}
}

func TestBindingsListenerFailure(t *testing.T) {
	bs := NewBindings()
	bs.AddBindingListener(&BindingFuncs{
		Added: func(b *Binding) error {
			return errors.New("no thanks")
		},
	})
	b, err := bs.BindValue("x", types.IntType, 1)
	var lf *ListenerFailed
	if !errors.As(err, &lf) {
		t.Fatalf("wanted ListenerFailed, not %v", err)
	}
	if b == nil || !bs.Contains("x") {
		t.Fatal("binding should still be there")
	}
}

func TestBindRace(t *testing.T) {
	var (
		bs   = NewBindings()
		wins int32
		wg   sync.WaitGroup
		n    = 64
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := bs.BindValue("x", types.IntType, i); err == nil {
				atomic.AddInt32(&wins, 1)
			} else if _, is := err.(*AlreadyExists); !is {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatal(wins)
	}
	if bs.Size() != 1 {
		t.Fatal(bs.Size())
	}
}

func TestBindingsImmutable(t *testing.T) {
	bs := NewBindings()
	x := mustBindValue(t, bs, "x", types.IntType, 1)
	env := bs.AsImmutable()

	if err := env.Bind(NewBinding("y").MustBuild()); !errors.Is(err, Unsupported) {
		t.Fatal(err)
	}
	if _, err := env.BindValue("y", types.IntType, 1); !errors.Is(err, Unsupported) {
		t.Fatal(err)
	}
	if err := env.Remove("x"); !errors.Is(err, Unsupported) {
		t.Fatal(err)
	}

	v := env.Get("x")
	if !v.IsView() {
		t.Fatal("not a view")
	}
	if err := v.SetValue(2); err == nil {
		t.Fatal("view was mutable")
	}
	for _, b := range env.GetByType(types.IntType) {
		if !b.IsView() {
			t.Fatal("not a view")
		}
	}

	x.SetValue(3)
	if v.Value() != 3 {
		t.Fatal(v.Value())
	}
	mustBindValue(t, bs, "z", types.IntType, 1)
	if !env.Contains("z") || env.Size() != 2 {
		t.Fatal(env.Names())
	}
	if env.AsImmutable() != env {
		t.Fatal("facade of a facade")
	}

	heard := hearViews(t, env)
	x.SetValue(4)
	mustBindValue(t, bs, "w", types.IntType, 1)
	if n := len(*heard); n != 2 {
		t.Fatal(n)
	}
	if x.Value() != 4 {
		t.Fatal(x.Value())
	}
}

// hearViews registers a listener through env that checks that every
// binding it's given is read-only.
func hearViews(t *testing.T, env Environment) *[]*Binding {
	t.Helper()
	var heard []*Binding
	check := func(b *Binding) error {
		heard = append(heard, b)
		if !b.IsView() {
			t.Fatalf("%s isn't a view", b.Name())
		}
		var immutable *Immutable
		if err := b.SetValue(99); !errors.As(err, &immutable) {
			t.Fatalf("%s: %v", b.Name(), err)
		}
		return nil
	}
	env.AddBindingListener(&BindingFuncs{
		Added: check,
		Changed: func(b *Binding, oldValue, newValue interface{}) error {
			return check(b)
		},
	})
	return &heard
}

func TestReservedNames(t *testing.T) {
	if !testutil.SameStrings(DefaultReservedNames.Names(), []string{"bindings", "result", "ruleContext", "ruleSet", "scope"}) {
		t.Fatal(DefaultReservedNames.Names())
	}
	for _, name := range []string{"x", "_x", "$x", "x1"} {
		if !IsValidName(name) {
			t.Fatal(name)
		}
	}
	for _, name := range []string{"", "1x", "x-y", "x y"} {
		if IsValidName(name) {
			t.Fatal(name)
		}
	}
}
