package builtin

import (
	"testing"

	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/value"
)

func TestHashSha256_String(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(strLit("abc")),
		eval.CallStage("hash sha256", testTag(0, 11)),
	)
	v := collect(t, out)
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got, err := v.AsString(); err != nil || got != want {
		t.Errorf("got %s, want %s", v, want)
	}
}

func TestHashSha256_EmptyString(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(strLit("")),
		eval.CallStage("hash sha256", testTag(0, 11)),
	)
	v := collect(t, out)
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got, err := v.AsString(); err != nil || got != want {
		t.Errorf("got %s, want %s", v, want)
	}
}

func TestHashBlake2b_String(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(strLit("abc")),
		eval.CallStage("hash blake2b", testTag(0, 12)),
	)
	v := collect(t, out)
	want := "bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319"
	if got, err := v.AsString(); err != nil || got != want {
		t.Errorf("got %s, want %s", v, want)
	}
}

func TestHashSha256_Binary(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(value.Binary([]byte("abc"), testTag(0, 3)))),
		eval.CallStage("hash sha256", testTag(4, 15)),
	)
	v := collect(t, out)
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got, err := v.AsString(); err != nil || got != want {
		t.Errorf("got %s, want %s", v, want)
	}
}

func TestHash_BinaryAndStringAgree(t *testing.T) {
	es := shellEngine(t)
	fromString := collect(t, runStages(t, es, eval.NewStack(),
		eval.ExprStage(strLit("shale")),
		eval.CallStage("hash blake2b", testTag(0, 12)),
	))
	fromBinary := collect(t, runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(value.Binary([]byte("shale"), testTag(0, 5)))),
		eval.CallStage("hash blake2b", testTag(6, 18)),
	))
	s, _ := fromString.AsString()
	b, _ := fromBinary.AsString()
	if s != b || s == "" {
		t.Errorf("string digest %q != binary digest %q", s, b)
	}
}
