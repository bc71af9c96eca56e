package pipeline

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

func TestValueStream_FromSlice(t *testing.T) {
	s := FromSlice(NewSignals(nil), intVals(1, 2, 3), testTag(0, 5))
	if n, ok := s.KnownLength(); !ok || n != 3 {
		t.Errorf("KnownLength = (%d, %v), want (3, true)", n, ok)
	}
	got := collectInts(t, s)
	want := []int64{1, 2, 3}
	if !int64sEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestValueStream_Empty(t *testing.T) {
	s := FromSlice(NewSignals(nil), nil, testTag(0, 0))
	if _, ok := s.Next(); ok {
		t.Error("empty stream yielded an item")
	}
	if n, ok := s.KnownLength(); !ok || n != 0 {
		t.Errorf("KnownLength = (%d, %v), want (0, true)", n, ok)
	}
}

func TestValueStream_OnceDrainable(t *testing.T) {
	s := FromSlice(NewSignals(nil), intVals(1), testTag(0, 1))
	collectInts(t, s)
	if _, ok := s.Next(); ok {
		t.Error("drained stream yielded an item")
	}
	if _, ok := s.Next(); ok {
		t.Error("drained stream yielded an item on repeat pull")
	}
}

func TestValueStream_LazyPull(t *testing.T) {
	calls := 0
	tag := testTag(0, 3)
	s := New(NewSignals(nil), tag, func() (value.Value, bool) {
		calls++
		return value.Int(int64(calls), tag), true
	})
	if calls != 0 {
		t.Fatalf("source called %d times before first pull", calls)
	}
	s.Next()
	s.Next()
	if calls != 2 {
		t.Errorf("source called %d times after 2 pulls, want 2", calls)
	}
}

func TestValueStream_InterruptYieldsErrorValueThenStops(t *testing.T) {
	signals := NewSignals(context.Background())
	s := FromSlice(signals, intVals(1, 2, 3, 4), testTag(3, 9))

	if v, ok := s.Next(); !ok || v.IsError() {
		t.Fatalf("first pull = (%v, %v), want clean item", v, ok)
	}
	signals.Interrupt()

	v, ok := s.Next()
	if !ok {
		t.Fatal("interrupted stream should yield one final error value")
	}
	err, isErr := v.AsError()
	if !isErr {
		t.Fatalf("post-interrupt item is %v, want error value", v.Kind())
	}
	if err.Kind != errors.KindInterrupted {
		t.Errorf("Kind = %v, want %v", err.Kind, errors.KindInterrupted)
	}
	wantSpan := source.NewSpan(3, 9)
	if err.Tag.Span != wantSpan {
		t.Errorf("blame span = %v, want %v", err.Tag.Span, wantSpan)
	}
	if _, ok := s.Next(); ok {
		t.Error("stream yielded an item after the interrupt error")
	}
}

func TestValueStream_CloseRunsHooksOnce(t *testing.T) {
	hookA, hookB := 0, 0
	failure := stderrors.New("release failed")
	s := New(NewSignals(nil), testTag(0, 1),
		func() (value.Value, bool) { return value.Int(1, testTag(0, 1)), true },
		WithOnClose(func() error { hookA++; return failure }),
		WithOnClose(func() error { hookB++; return stderrors.New("second") }),
	)

	if err := s.Close(); err != failure {
		t.Errorf("Close = %v, want first hook error %v", err, failure)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	if hookA != 1 || hookB != 1 {
		t.Errorf("hooks ran (%d, %d) times, want (1, 1)", hookA, hookB)
	}
	if _, ok := s.Next(); ok {
		t.Error("closed stream yielded an item")
	}
}

func TestValueStream_FromRange(t *testing.T) {
	r, err := value.NewBoundedRange(1, 2, 7, true, testTag(0, 6))
	if err != nil {
		t.Fatal(err)
	}
	s := FromRange(NewSignals(nil), r, testTag(0, 6))
	if n, ok := s.KnownLength(); !ok || n != 4 {
		t.Errorf("KnownLength = (%d, %v), want (4, true)", n, ok)
	}
	got := collectInts(t, s)
	want := []int64{1, 3, 5, 7}
	if !int64sEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestValueStream_FromRange_UnboundedWithTake(t *testing.T) {
	r, err := value.NewUnboundedRange(10, 5, testTag(0, 4))
	if err != nil {
		t.Fatal(err)
	}
	s := FromRange(NewSignals(nil), r, testTag(0, 4))
	if _, ok := s.KnownLength(); ok {
		t.Error("unbounded range stream should not report a length")
	}
	got := collectInts(t, s.Take(3))
	want := []int64{10, 15, 20}
	if !int64sEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestValueStream_Generate(t *testing.T) {
	tag := testTag(0, 8)
	s := Generate(NewSignals(nil), value.Int(3, tag), func(state value.Value) (out, next *value.Value) {
		n, err := state.AsInt()
		if err != nil {
			t.Fatal(err)
		}
		if n == 0 {
			return nil, nil
		}
		emit := value.Int(n*10, tag)
		succ := value.Int(n-1, tag)
		return &emit, &succ
	}, tag)
	got := collectInts(t, s)
	want := []int64{30, 20, 10}
	if !int64sEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestValueStream_GenerateSkipsTurnWithoutEmit(t *testing.T) {
	tag := testTag(0, 8)
	s := Generate(NewSignals(nil), value.Int(0, tag), func(state value.Value) (out, next *value.Value) {
		n, err := state.AsInt()
		if err != nil {
			t.Fatal(err)
		}
		if n >= 6 {
			return nil, nil
		}
		succ := value.Int(n+1, tag)
		if n%2 != 0 {
			return nil, &succ
		}
		emit := value.Int(n, tag)
		return &emit, &succ
	}, tag)
	got := collectInts(t, s)
	want := []int64{0, 2, 4}
	if !int64sEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestValueStream_Take(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want []int64
	}{
		{"fewer than source", 2, []int64{1, 2}},
		{"exact length", 4, []int64{1, 2, 3, 4}},
		{"more than source", 9, []int64{1, 2, 3, 4}},
		{"zero", 0, nil},
		{"negative", -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FromSlice(NewSignals(nil), intVals(1, 2, 3, 4), testTag(0, 4))
			got := collectInts(t, s.Take(tt.n))
			if !int64sEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueStream_TakePullsExactly(t *testing.T) {
	pulls := 0
	tag := testTag(0, 2)
	src := New(NewSignals(nil), tag, func() (value.Value, bool) {
		pulls++
		return value.Int(int64(pulls), tag), true
	})
	collectInts(t, src.Take(3))
	if pulls != 3 {
		t.Errorf("source pulled %d times, want 3", pulls)
	}
}

func TestValueStream_TakeClosesSource(t *testing.T) {
	closed := 0
	tag := testTag(0, 2)
	src := New(NewSignals(nil), tag,
		func() (value.Value, bool) { return value.Int(1, tag), true },
		WithOnClose(func() error { closed++; return nil }),
	)
	taken := src.Take(1)
	collectInts(t, taken)
	if err := taken.Close(); err != nil {
		t.Fatal(err)
	}
	if closed != 1 {
		t.Errorf("source close hooks ran %d times, want 1", closed)
	}
}

func TestValueStream_DistinctIDs(t *testing.T) {
	a := FromSlice(NewSignals(nil), nil, testTag(0, 0))
	b := FromSlice(NewSignals(nil), nil, testTag(0, 0))
	if a.ID() == b.ID() {
		t.Error("two streams share an identity")
	}
}

// --- helpers ---

func testTag(start, end int) source.Tag {
	return source.FromSpan(source.NewSpan(start, end))
}

func intVals(ns ...int64) []value.Value {
	vals := make([]value.Value, len(ns))
	for i, n := range ns {
		vals[i] = value.Int(n, testTag(0, 0))
	}
	return vals
}

func collectInts(t *testing.T, s *ValueStream) []int64 {
	t.Helper()
	var out []int64
	for {
		v, ok := s.Next()
		if !ok {
			return out
		}
		n, err := v.AsInt()
		if err != nil {
			t.Fatalf("stream yielded non-int: %v", err)
		}
		out = append(out, n)
	}
}

func int64sEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
