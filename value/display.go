package value

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/shale-sh/shale/cellpath"
	"github.com/shale-sh/shale/errors"
)

// String renders the value for display: filesizes in humanized units,
// durations in spelled-out parts, records and lists in brace form with
// their elements rendered recursively. Strings render raw, without
// quotes; nothing renders empty.
func (v Value) String() string {
	switch v.kind {
	case KindNothing:
		return ""
	case KindBool:
		return strconv.FormatBool(v.data.(bool))
	case KindInt:
		return strconv.FormatInt(v.data.(int64), 10)
	case KindFloat:
		return strconv.FormatFloat(v.data.(float64), 'f', -1, 64)
	case KindFilesize:
		return formatFilesize(v.data.(int64))
	case KindDuration:
		return formatDuration(v.data.(time.Duration))
	case KindDate:
		return v.data.(time.Time).Format(time.RFC3339)
	case KindString:
		return v.data.(string)
	case KindBinary:
		return "0x[" + hex.EncodeToString(v.data.([]byte)) + "]"
	case KindRange:
		return v.data.(*Range).String()
	case KindRecord:
		r := v.data.(*Record)
		var b strings.Builder
		b.WriteByte('{')
		for i, col := range r.cols {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(col)
			b.WriteString(": ")
			b.WriteString(r.vals[i].String())
		}
		b.WriteByte('}')
		return b.String()
	case KindList:
		vals := v.data.([]Value)
		var b strings.Builder
		b.WriteByte('[')
		for i, item := range vals {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(item.String())
		}
		b.WriteByte(']')
		return b.String()
	case KindClosure:
		c := v.data.(*Closure)
		return "<closure " + strconv.Itoa(c.BlockID) + ">"
	case KindCellPath:
		return v.data.(cellpath.Path).String()
	case KindError:
		return v.data.(*errors.ShellError).Error()
	}
	return ""
}
