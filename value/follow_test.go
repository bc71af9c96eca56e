package value

import (
	"strings"
	"testing"

	"github.com/shale-sh/shale/cellpath"
	shellerr "github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
)

func fieldPath(names ...string) cellpath.Path {
	members := make([]cellpath.Member, len(names))
	for i, n := range names {
		members[i] = cellpath.Field(n, source.UnknownTag())
	}
	return cellpath.New(members...)
}

func indexPath(indexes ...int) cellpath.Path {
	members := make([]cellpath.Member, len(indexes))
	for i, n := range indexes {
		members[i] = cellpath.Index(n, source.UnknownTag())
	}
	return cellpath.New(members...)
}

func TestFollowCellPath_RecordField(t *testing.T) {
	v := recordOf([]string{"name", "size"}, []Value{strv("a.txt"), intv(120)})
	got, err := v.FollowCellPath(fieldPath("size"), false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !Equal(got, intv(120)) {
		t.Errorf("FollowCellPath() = %s, want 120", got)
	}
}

func TestFollowCellPath_NestedPath(t *testing.T) {
	v := recordOf([]string{"user"}, []Value{
		recordOf([]string{"name"}, []Value{strv("amy")}),
	})
	path, err := cellpath.Parse("user.name", source.UnknownTag())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err := v.FollowCellPath(path, false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !Equal(got, strv("amy")) {
		t.Errorf("FollowCellPath() = %s, want amy", got)
	}
}

func TestFollowCellPath_ListIndex(t *testing.T) {
	v := listOf(intv(10), intv(20), intv(30))
	tests := []struct {
		name    string
		idx     int
		want    Value
		wantErr shellerr.Kind
	}{
		{"first", 0, intv(10), ""},
		{"middle", 1, intv(20), ""},
		{"negative from end", -1, intv(30), ""},
		{"negative middle", -3, intv(10), ""},
		{"past end", 3, Value{}, shellerr.KindIndexOutOfRange},
		{"far negative", -4, Value{}, shellerr.KindIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.FollowCellPath(indexPath(tt.idx), false)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("error = nil, want error")
				}
				if !shellerr.Is(err, tt.wantErr) {
					t.Errorf("error kind = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FollowCellPath() error = %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("FollowCellPath() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFollowCellPath_EmptyList(t *testing.T) {
	_, err := listOf().FollowCellPath(indexPath(0), false)
	if err == nil {
		t.Fatal("error = nil, want empty data error")
	}
	if !shellerr.Is(err, shellerr.KindEmptyData) {
		t.Errorf("error = %v, want kind %v", err, shellerr.KindEmptyData)
	}
}

func TestFollowCellPath_Broadcast(t *testing.T) {
	table := listOf(
		recordOf([]string{"name"}, []Value{strv("a")}),
		recordOf([]string{"name"}, []Value{strv("b")}),
	)
	got, err := table.FollowCellPath(fieldPath("name"), false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !Equal(got, listOf(strv("a"), strv("b"))) {
		t.Errorf("FollowCellPath() = %s, want [a, b]", got)
	}
}

func TestFollowCellPath_BroadcastMissAborts(t *testing.T) {
	table := listOf(
		recordOf([]string{"name"}, []Value{strv("a")}),
		recordOf([]string{"other"}, []Value{strv("b")}),
	)
	_, err := table.FollowCellPath(fieldPath("name"), false)
	if err == nil {
		t.Fatal("error = nil, want column not found")
	}
	if !shellerr.Is(err, shellerr.KindColumnNotFound) {
		t.Errorf("error = %v, want kind %v", err, shellerr.KindColumnNotFound)
	}
}

func TestFollowCellPath_BroadcastOptionalFillsNothing(t *testing.T) {
	table := listOf(
		recordOf([]string{"name"}, []Value{strv("a")}),
		recordOf([]string{"other"}, []Value{strv("b")}),
	)
	path := cellpath.New(cellpath.Field("name", source.UnknownTag()).AsOptional())
	got, err := table.FollowCellPath(path, false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	rows, err := got.AsList()
	if err != nil {
		t.Fatalf("AsList() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if !Equal(rows[0], strv("a")) {
		t.Errorf("rows[0] = %s, want a", rows[0])
	}
	if !rows[1].IsNothing() {
		t.Errorf("rows[1] = %s, want nothing", rows[1])
	}
}

func TestFollowCellPath_BinaryByte(t *testing.T) {
	v := Binary([]byte{0x10, 0xff}, source.UnknownTag())
	got, err := v.FollowCellPath(indexPath(1), false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !Equal(got, intv(255)) {
		t.Errorf("FollowCellPath() = %s, want 255", got)
	}
	got, err = v.FollowCellPath(indexPath(-2), false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !Equal(got, intv(16)) {
		t.Errorf("FollowCellPath() = %s, want 16", got)
	}
	if _, err := v.FollowCellPath(indexPath(2), false); !shellerr.Is(err, shellerr.KindIndexOutOfRange) {
		t.Errorf("error = %v, want kind %v", err, shellerr.KindIndexOutOfRange)
	}
}

func TestFollowCellPath_RangeElement(t *testing.T) {
	r := mustRange(t, 1, 2, 9, true)
	v := NewRange(r, source.UnknownTag())
	got, err := v.FollowCellPath(indexPath(2), false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !Equal(got, intv(5)) {
		t.Errorf("FollowCellPath() = %s, want 5", got)
	}
	if _, err := v.FollowCellPath(indexPath(99), false); !shellerr.Is(err, shellerr.KindIndexOutOfRange) {
		t.Errorf("error = %v, want kind %v", err, shellerr.KindIndexOutOfRange)
	}

	unbounded := NewRange(mustUnbounded(t, 0, 1), source.UnknownTag())
	got, err = unbounded.FollowCellPath(indexPath(100), false)
	if err != nil {
		t.Fatalf("FollowCellPath() on unbounded range error = %v", err)
	}
	if !Equal(got, intv(100)) {
		t.Errorf("FollowCellPath() = %s, want 100", got)
	}
}

func TestFollowCellPath_OptionalMember(t *testing.T) {
	v := recordOf([]string{"a"}, []Value{intv(1)})
	path := cellpath.New(cellpath.Field("missing", source.UnknownTag()).AsOptional())
	got, err := v.FollowCellPath(path, false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !got.IsNothing() {
		t.Errorf("FollowCellPath() = %s, want nothing", got)
	}

	// An optional chain keeps yielding nothing past the first miss.
	chain, err := cellpath.Parse("missing?.deeper?", source.UnknownTag())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err = v.FollowCellPath(chain, false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !got.IsNothing() {
		t.Errorf("FollowCellPath() = %s, want nothing", got)
	}
}

func TestFollowCellPath_ErrorPassthrough(t *testing.T) {
	se := shellerr.DivisionByZero(testTag(3, 4))
	v := recordOf([]string{"val"}, []Value{Error(se)})
	path, err := cellpath.Parse("val.deeper", source.UnknownTag())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	got, err := v.FollowCellPath(path, false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v, want the error carried as a value", err)
	}
	inner, ok := got.AsError()
	if !ok {
		t.Fatalf("result = %s, want an error value", got)
	}
	if inner != se {
		t.Errorf("AsError() = %v, want the original error", inner)
	}
}

func TestFollowCellPath_Insensitive(t *testing.T) {
	v := recordOf([]string{"Name"}, []Value{strv("x")})
	if _, err := v.FollowCellPath(fieldPath("name"), false); err == nil {
		t.Error("case-sensitive miss: error = nil, want column not found")
	}
	got, err := v.FollowCellPath(fieldPath("name"), true)
	if err != nil {
		t.Fatalf("FollowCellPath() insensitive error = %v", err)
	}
	if !Equal(got, strv("x")) {
		t.Errorf("FollowCellPath() = %s, want x", got)
	}

	member := cellpath.Field("name", source.UnknownTag()).AsInsensitive()
	got, err = v.FollowCellPath(cellpath.New(member), false)
	if err != nil {
		t.Fatalf("FollowCellPath() with insensitive member error = %v", err)
	}
	if !Equal(got, strv("x")) {
		t.Errorf("FollowCellPath() = %s, want x", got)
	}
}

func TestFollowCellPath_SuggestsColumn(t *testing.T) {
	v := recordOf([]string{"name", "size"}, []Value{strv("a"), intv(1)})
	_, err := v.FollowCellPath(fieldPath("nmae"), false)
	if err == nil {
		t.Fatal("error = nil, want column not found")
	}
	se, ok := shellerr.As(err)
	if !ok {
		t.Fatalf("error %v is not a shell error", err)
	}
	if want := "did you mean 'name'?"; !strings.Contains(se.Help, want) {
		t.Errorf("Help = %q, want it to contain %q", se.Help, want)
	}
}

func TestFollowCellPath_BlamesMemberSpan(t *testing.T) {
	v := recordOf([]string{"name"}, []Value{strv("a")})
	path := cellpath.New(cellpath.Field("zzz", testTag(7, 10)))
	_, err := v.FollowCellPath(path, false)
	if err == nil {
		t.Fatal("error = nil, want column not found")
	}
	se, _ := shellerr.As(err)
	if se.Tag.Span.Start != 7 || se.Tag.Span.End != 10 {
		t.Errorf("Tag.Span = %v, want 7..10", se.Tag.Span)
	}
}

func TestUpdateCellPath(t *testing.T) {
	v := recordOf([]string{"a", "b"}, []Value{intv(1), intv(2)})
	got, err := v.UpdateCellPath(fieldPath("b"), intv(9))
	if err != nil {
		t.Fatalf("UpdateCellPath() error = %v", err)
	}
	if !Equal(got, recordOf([]string{"a", "b"}, []Value{intv(1), intv(9)})) {
		t.Errorf("UpdateCellPath() = %s, want {a: 1, b: 9}", got)
	}
	// The original is untouched.
	if !Equal(v, recordOf([]string{"a", "b"}, []Value{intv(1), intv(2)})) {
		t.Errorf("original mutated: %s", v)
	}

	if _, err := v.UpdateCellPath(fieldPath("missing"), intv(0)); !shellerr.Is(err, shellerr.KindColumnNotFound) {
		t.Errorf("update of missing column: error = %v, want kind %v", err, shellerr.KindColumnNotFound)
	}
}

func TestUpdateCellPath_NestedSpine(t *testing.T) {
	v := recordOf([]string{"user", "n"}, []Value{
		recordOf([]string{"age"}, []Value{intv(30)}),
		intv(7),
	})
	got, err := v.UpdateCellPath(fieldPath("user", "age"), intv(31))
	if err != nil {
		t.Fatalf("UpdateCellPath() error = %v", err)
	}
	inner, err := got.FollowCellPath(fieldPath("user", "age"), false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !Equal(inner, intv(31)) {
		t.Errorf("updated age = %s, want 31", inner)
	}
	orig, err := v.FollowCellPath(fieldPath("user", "age"), false)
	if err != nil {
		t.Fatalf("FollowCellPath() error = %v", err)
	}
	if !Equal(orig, intv(30)) {
		t.Errorf("original age = %s after update, want 30", orig)
	}
}

func TestUpdateCellPath_ListRow(t *testing.T) {
	v := listOf(intv(10), intv(20))
	got, err := v.UpdateCellPath(indexPath(1), intv(99))
	if err != nil {
		t.Fatalf("UpdateCellPath() error = %v", err)
	}
	if !Equal(got, listOf(intv(10), intv(99))) {
		t.Errorf("UpdateCellPath() = %s, want [10, 99]", got)
	}
	if _, err := v.UpdateCellPath(indexPath(5), intv(0)); !shellerr.Is(err, shellerr.KindIndexOutOfRange) {
		t.Errorf("error = %v, want kind %v", err, shellerr.KindIndexOutOfRange)
	}
}

func TestUpdateCellPath_Broadcast(t *testing.T) {
	table := listOf(
		recordOf([]string{"n"}, []Value{intv(1)}),
		recordOf([]string{"n"}, []Value{intv(2)}),
	)
	got, err := table.UpdateCellPath(fieldPath("n"), intv(0))
	if err != nil {
		t.Fatalf("UpdateCellPath() error = %v", err)
	}
	want := listOf(
		recordOf([]string{"n"}, []Value{intv(0)}),
		recordOf([]string{"n"}, []Value{intv(0)}),
	)
	if !Equal(got, want) {
		t.Errorf("UpdateCellPath() = %s, want every row updated", got)
	}
}

func TestInsertCellPath(t *testing.T) {
	v := recordOf([]string{"a"}, []Value{intv(1)})
	got, err := v.InsertCellPath(fieldPath("b"), intv(2))
	if err != nil {
		t.Fatalf("InsertCellPath() error = %v", err)
	}
	if !Equal(got, recordOf([]string{"a", "b"}, []Value{intv(1), intv(2)})) {
		t.Errorf("InsertCellPath() = %s, want {a: 1, b: 2}", got)
	}

	_, err = v.InsertCellPath(fieldPath("a"), intv(9))
	if err == nil {
		t.Fatal("insert of existing column: error = nil, want error")
	}
	if want := "already exists"; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %v, want it to mention %q", err, want)
	}
}

func TestInsertCellPath_ListIndex(t *testing.T) {
	v := listOf(intv(1), intv(3))
	got, err := v.InsertCellPath(indexPath(1), intv(2))
	if err != nil {
		t.Fatalf("InsertCellPath() error = %v", err)
	}
	if !Equal(got, listOf(intv(1), intv(2), intv(3))) {
		t.Errorf("InsertCellPath() = %s, want [1, 2, 3]", got)
	}

	got, err = v.InsertCellPath(indexPath(2), intv(4))
	if err != nil {
		t.Fatalf("InsertCellPath() at length error = %v", err)
	}
	if !Equal(got, listOf(intv(1), intv(3), intv(4))) {
		t.Errorf("InsertCellPath() = %s, want [1, 3, 4]", got)
	}

	if _, err := v.InsertCellPath(indexPath(5), intv(0)); !shellerr.Is(err, shellerr.KindIndexOutOfRange) {
		t.Errorf("error = %v, want kind %v", err, shellerr.KindIndexOutOfRange)
	}
}

func TestInsertCellPath_MissingIntermediate(t *testing.T) {
	v := recordOf(nil, nil)
	if _, err := v.InsertCellPath(fieldPath("a", "b"), intv(1)); !shellerr.Is(err, shellerr.KindColumnNotFound) {
		t.Errorf("error = %v, want kind %v", err, shellerr.KindColumnNotFound)
	}
}

func TestUpsertCellPath(t *testing.T) {
	v := recordOf([]string{"a"}, []Value{intv(1)})

	got, err := v.UpsertCellPath(fieldPath("a"), intv(9))
	if err != nil {
		t.Fatalf("UpsertCellPath() replace error = %v", err)
	}
	if !Equal(got, recordOf([]string{"a"}, []Value{intv(9)})) {
		t.Errorf("UpsertCellPath() = %s, want {a: 9}", got)
	}

	got, err = v.UpsertCellPath(fieldPath("b"), intv(2))
	if err != nil {
		t.Fatalf("UpsertCellPath() create error = %v", err)
	}
	if !Equal(got, recordOf([]string{"a", "b"}, []Value{intv(1), intv(2)})) {
		t.Errorf("UpsertCellPath() = %s, want {a: 1, b: 2}", got)
	}
}

func TestUpsertCellPath_GrowsStructure(t *testing.T) {
	got, err := Nothing(source.UnknownTag()).UpsertCellPath(fieldPath("a"), intv(1))
	if err != nil {
		t.Fatalf("UpsertCellPath() on nothing error = %v", err)
	}
	if !Equal(got, recordOf([]string{"a"}, []Value{intv(1)})) {
		t.Errorf("UpsertCellPath() = %s, want {a: 1}", got)
	}

	got, err = recordOf(nil, nil).UpsertCellPath(fieldPath("a", "b"), intv(5))
	if err != nil {
		t.Fatalf("UpsertCellPath() nested create error = %v", err)
	}
	want := recordOf([]string{"a"}, []Value{recordOf([]string{"b"}, []Value{intv(5)})})
	if !Equal(got, want) {
		t.Errorf("UpsertCellPath() = %s, want {a: {b: 5}}", got)
	}
}

func TestUpsertCellPath_ListAppend(t *testing.T) {
	v := listOf(intv(1))
	got, err := v.UpsertCellPath(indexPath(1), intv(2))
	if err != nil {
		t.Fatalf("UpsertCellPath() append error = %v", err)
	}
	if !Equal(got, listOf(intv(1), intv(2))) {
		t.Errorf("UpsertCellPath() = %s, want [1, 2]", got)
	}
	if _, err := v.UpsertCellPath(indexPath(5), intv(0)); !shellerr.Is(err, shellerr.KindIndexOutOfRange) {
		t.Errorf("error = %v, want kind %v", err, shellerr.KindIndexOutOfRange)
	}
}
