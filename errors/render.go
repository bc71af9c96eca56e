package errors

import (
	"fmt"
	"strings"

	"github.com/shale-sh/shale/source"
)

// SourceLookup resolves a file or url anchor to the text loaded from it.
// Inline anchors carry their own text and never consult the lookup.
type SourceLookup func(anchor *source.AnchorLocation) (*source.Text, bool)

// RenderOptions controls the diagnostic layout.
type RenderOptions struct {
	// ContextLines is the number of source lines shown on each side of
	// the blamed line.
	ContextLines int
	// NoColor disables ANSI styling.
	NoColor bool
}

// Render formats the error as a plain-text terminal diagnostic with one
// context line each side and no ANSI escapes, so it is safe for logs as
// well as terminals. When the error's tag points into known source
// text, the output is a numbered snippet with carets under the blamed
// span:
//
//	COLUMN NOT FOUND in <repl-2> at 1:17: cannot find column 'nmae'
//
//	   1 | $record | get nmae
//	       |               ^^^^
//
//	help: did you mean 'name'?
//
// Without usable source the summary line stands alone.
func Render(e *ShellError, lookup SourceLookup) string {
	return RenderWith(e, lookup, RenderOptions{ContextLines: 1, NoColor: true})
}

// RenderWith formats the error with explicit layout options.
func RenderWith(e *ShellError, lookup SourceLookup, opts RenderOptions) string {
	header := strings.ReplaceAll(string(e.Kind), "_", " ")
	if !opts.NoColor {
		header = "\033[31m" + header + "\033[0m"
	}
	var b strings.Builder

	text, ok := resolveText(e.Tag.Anchor, lookup)
	if !ok || e.Tag.Span.IsUnknown() {
		fmt.Fprintf(&b, "%s: %s\n", header, e.Message)
		if e.Help != "" {
			fmt.Fprintf(&b, "help: %s\n", e.Help)
		}
		return b.String()
	}

	line, col := text.LineCol(e.Tag.Span.Start)
	if name := e.Tag.Anchor.Name(); name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, e.Message)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, e.Message)
	}

	lines := strings.Split(text.String(), "\n")
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	first := line - opts.ContextLines
	if first < 1 {
		first = 1
	}
	last := line + opts.ContextLines
	if last > len(lines) {
		last = len(lines)
	}
	for n := first; n <= last; n++ {
		fmt.Fprintf(&b, "%4d | %s\n", n, lines[n-1])
		if n != line {
			continue
		}
		width := e.Tag.Span.Len()
		if rest := len(lineTxt) - (col - 1); width > rest {
			width = rest
		}
		if width < 1 {
			width = 1
		}
		carets := strings.Repeat("^", width)
		if !opts.NoColor {
			carets = "\033[31m" + carets + "\033[0m"
		}
		fmt.Fprintf(&b, "     | %s%s\n", strings.Repeat(" ", col-1), carets)
	}
	if e.Help != "" {
		fmt.Fprintf(&b, "\nhelp: %s\n", e.Help)
	}
	return b.String()
}

func resolveText(anchor *source.AnchorLocation, lookup SourceLookup) (*source.Text, bool) {
	if anchor == nil {
		return nil, false
	}
	if t, ok := anchor.SourceText(); ok {
		return t, true
	}
	if lookup == nil {
		return nil, false
	}
	return lookup(anchor)
}
