package builtin

import (
	"testing"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/value"
)

func TestGet_FieldFromRecord(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"name", "port"}, []value.Value{
		value.String("shale", testTag(0, 0)),
		value.Int(7, testTag(0, 0)),
	})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("get", testTag(0, 3), strLit("name")),
	)
	v := collect(t, out)
	if got, err := v.AsString(); err != nil || got != "shale" {
		t.Errorf("got %s, want shale", v)
	}
}

func TestGet_NestedPath(t *testing.T) {
	es := shellEngine(t)
	inner := testRecord(t, []string{"port"}, []value.Value{value.Int(4141, testTag(0, 0))})
	rec := testRecord(t, []string{"server"}, []value.Value{inner})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("get", testTag(0, 3), strLit("server.port")),
	)
	if got := mustInt(t, collect(t, out)); got != 4141 {
		t.Errorf("got %d, want 4141", got)
	}
}

func TestGet_MissingColumnFails(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"name"}, []value.Value{value.String("shale", testTag(0, 0))})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("get", testTag(0, 3), strLit("nome")),
	)
	wantErrKind(t, collect(t, out), errors.KindColumnNotFound)
}

func TestGet_IgnoreErrorsYieldsNothing(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"name"}, []value.Value{value.String("shale", testTag(0, 0))})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("get", testTag(0, 3), strLit("nome")).
			WithNamed("ignore-errors", testTag(4, 18), nil),
	)
	if v := collect(t, out); !v.IsNothing() {
		t.Errorf("got %s (%s), want nothing", v, v.Kind())
	}
}

func TestGet_IgnoreCaseMatchesColumn(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"Name"}, []value.Value{value.String("shale", testTag(0, 0))})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("get", testTag(0, 3), strLit("name")).
			WithNamed("ignore-case", testTag(4, 16), nil),
	)
	v := collect(t, out)
	if got, err := v.AsString(); err != nil || got != "shale" {
		t.Errorf("got %s, want shale", v)
	}
}

func TestGet_BroadcastsOverRows(t *testing.T) {
	es := shellEngine(t)
	rows := value.List([]value.Value{
		testRecord(t, []string{"n"}, []value.Value{value.Int(1, testTag(0, 0))}),
		testRecord(t, []string{"n"}, []value.Value{value.Int(2, testTag(0, 0))}),
	}, testTag(0, 0))
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rows)),
		eval.CallStage("get", testTag(0, 3), strLit("n")),
	)
	wantInts(t, collect(t, out), 1, 2)
}

func TestGet_IndexIntoList(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(intListLit(10, 20, 30)),
		eval.CallStage("get", testTag(0, 3), strLit("1")),
	)
	if got := mustInt(t, collect(t, out)); got != 20 {
		t.Errorf("got %d, want 20", got)
	}
}

func TestGet_OptionalMemberYieldsNothing(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"name"}, []value.Value{value.String("shale", testTag(0, 0))})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("get", testTag(0, 3), strLit("nome?")),
	)
	if v := collect(t, out); !v.IsNothing() {
		t.Errorf("got %s (%s), want nothing", v, v.Kind())
	}
}

func TestSelect_ProjectsRecord(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"a", "b", "c"}, []value.Value{
		value.Int(1, testTag(0, 0)),
		value.Int(2, testTag(0, 0)),
		value.Int(3, testTag(0, 0)),
	})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("select", testTag(0, 6), strLit("c"), strLit("a")),
	)
	got, err := collect(t, out).AsRecord()
	if err != nil {
		t.Fatalf("expected record: %v", err)
	}
	cols := got.Columns()
	if len(cols) != 2 || cols[0] != "c" || cols[1] != "a" {
		t.Errorf("columns = %v, want [c a] in path order", cols)
	}
}

func TestSelect_ProjectsRows(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(sizeTable(t))),
		eval.CallStage("select", testTag(0, 6), strLit("name")),
	)
	rows, err := collect(t, out).AsList()
	if err != nil {
		t.Fatalf("expected table: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, row := range rows {
		rec, recErr := row.AsRecord()
		if recErr != nil {
			t.Fatalf("row %d: %v", i, recErr)
		}
		if rec.Len() != 1 || !rec.Has("name") {
			t.Errorf("row %d columns = %v, want [name]", i, rec.Columns())
		}
	}
}

func TestSelect_NoPathsFails(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"a"}, []value.Value{value.Int(1, testTag(0, 0))})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("select", testTag(0, 6)),
	)
	wantErrKind(t, collect(t, out), errors.KindMissingPositional)
}

func TestReject_DropsField(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"a", "b"}, []value.Value{
		value.Int(1, testTag(0, 0)),
		value.Int(2, testTag(0, 0)),
	})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("reject", testTag(0, 6), strLit("a")),
	)
	got, err := collect(t, out).AsRecord()
	if err != nil {
		t.Fatalf("expected record: %v", err)
	}
	if got.Has("a") || !got.Has("b") {
		t.Errorf("columns = %v, want [b]", got.Columns())
	}
}

func TestReject_DropsRowByIndex(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(intListLit(10, 20, 30)),
		eval.CallStage("reject", testTag(0, 6), strLit("1")),
	)
	wantInts(t, collect(t, out), 10, 30)
}

func TestReject_DropsColumnFromEveryRow(t *testing.T) {
	es := shellEngine(t)
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(sizeTable(t))),
		eval.CallStage("reject", testTag(0, 6), strLit("size")),
	)
	rows, err := collect(t, out).AsList()
	if err != nil {
		t.Fatalf("expected table: %v", err)
	}
	for i, row := range rows {
		rec, recErr := row.AsRecord()
		if recErr != nil {
			t.Fatalf("row %d: %v", i, recErr)
		}
		if rec.Has("size") {
			t.Errorf("row %d still has size column", i)
		}
	}
}

func TestReject_MissingFieldFails(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"a"}, []value.Value{value.Int(1, testTag(0, 0))})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("reject", testTag(0, 6), strLit("zz")),
	)
	wantErrKind(t, collect(t, out), errors.KindColumnNotFound)
}

func TestReject_OptionalMissingFieldPasses(t *testing.T) {
	es := shellEngine(t)
	rec := testRecord(t, []string{"a"}, []value.Value{value.Int(1, testTag(0, 0))})
	out := runStages(t, es, eval.NewStack(),
		eval.ExprStage(lit(rec)),
		eval.CallStage("reject", testTag(0, 6), strLit("zz?")),
	)
	got, err := collect(t, out).AsRecord()
	if err != nil {
		t.Fatalf("expected record: %v", err)
	}
	if !got.Has("a") {
		t.Errorf("columns = %v, want [a] untouched", got.Columns())
	}
}
