package main

import (
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/shale-sh/shale/cellpath"
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/eval"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

// errIncomplete marks parse failures that more input could fix: an
// unterminated string, an open bracket, a trailing pipe. The REPL keeps
// reading continuation lines while errors carry it; everywhere else it
// is an ordinary parse failure.
var errIncomplete = stderrors.New("incomplete input")

// parser lowers one piece of source text to engine IR. It consults the
// engine for two things: closure bodies register as blocks, and flag
// parsing reads command signatures to learn whether a flag takes a
// value token.
type parser struct {
	es     *eval.EngineState
	anchor *source.AnchorLocation
	toks   []token
	pos    int
}

// parseSource lowers src to a block. The anchor labels every tag the IR
// carries, so runtime errors render the original line.
func parseSource(es *eval.EngineState, src string, anchor *source.AnchorLocation) (*eval.Block, error) {
	toks, lerr := lex(src)
	if lerr != nil {
		end := lerr.offset + 1
		if end > len(src) {
			end = len(src)
		}
		if end <= lerr.offset {
			end = lerr.offset
		}
		serr := errors.ParseFailure(lerr.msg, source.NewTag(source.NewSpan(lerr.offset, end), anchor))
		if lerr.incomplete {
			serr = serr.WithCause(errIncomplete)
		}
		return nil, serr
	}
	p := &parser{es: es, anchor: anchor, toks: toks}
	return p.parseBlock(tokEOF)
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(offset int) token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) tag(t token) source.Tag {
	return source.NewTag(source.NewSpan(t.start, t.end), p.anchor)
}

func (p *parser) tagBetween(a, b token) source.Tag {
	return source.NewTag(source.NewSpan(a.start, b.end), p.anchor)
}

func (p *parser) fail(t token, msg string) *errors.ShellError {
	return errors.ParseFailure(msg, p.tag(t))
}

func (p *parser) failIncomplete(t token, msg string) *errors.ShellError {
	return p.fail(t, msg).WithCause(errIncomplete)
}

func (p *parser) skipSemis() {
	for p.peek().kind == tokSemi {
		p.next()
	}
}

// skipSoft skips the separators that carry no meaning between list
// elements and record entries.
func (p *parser) skipSoft() {
	for p.peek().kind == tokSemi || p.peek().kind == tokComma {
		p.next()
	}
}

func describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokWord:
		return "'" + t.text + "'"
	case tokInt, tokFloat:
		return "number " + t.text
	case tokString:
		return "string"
	case tokVar:
		return "'$" + t.lit + "'"
	case tokFlagLong, tokFlagShort:
		return "flag '" + t.text + "'"
	case tokSemi:
		if t.text == "\n" {
			return "end of line"
		}
		return "';'"
	default:
		return "'" + t.text + "'"
	}
}

func isLiteralWord(text string) bool {
	switch text {
	case "true", "false", "null":
		return true
	}
	return false
}

// startsExpr reports whether t can begin an argument expression, which
// decides whether a value token follows a flag or an unbounded range.
func startsExpr(t token) bool {
	switch t.kind {
	case tokInt, tokFloat, tokString, tokVar, tokWord, tokLBracket, tokLBrace, tokLParen:
		return true
	case tokOp:
		return t.text == "-"
	}
	return false
}

// parseBlock reads pipelines until the closing token, which is left for
// the caller to consume.
func (p *parser) parseBlock(until tokenKind) (*eval.Block, error) {
	var pipelines []*eval.Pipeline
	p.skipSemis()
	for p.peek().kind != until {
		if p.peek().kind == tokEOF {
			return nil, p.failIncomplete(p.peek(), "expected '}'")
		}
		pl, err := p.parsePipeline()
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, pl)
		if p.peek().kind == until {
			break
		}
		if p.peek().kind != tokSemi {
			return nil, p.fail(p.peek(), "unexpected "+describe(p.peek()))
		}
		p.skipSemis()
	}
	return &eval.Block{Pipelines: pipelines}, nil
}

func (p *parser) parsePipeline() (*eval.Pipeline, error) {
	if p.peek().kind == tokWord && p.peek().text == "let" {
		p.next()
		nameTok := p.peek()
		if nameTok.kind != tokWord {
			return nil, p.fail(nameTok, "expected a variable name after 'let'")
		}
		p.next()
		if p.peek().kind != tokAssign {
			return nil, p.fail(p.peek(), "expected '=' after the variable name")
		}
		p.next()
		if p.peek().kind == tokEOF {
			return nil, p.failIncomplete(p.peek(), "expected an expression after '='")
		}
		stages, err := p.parseStages()
		if err != nil {
			return nil, err
		}
		return &eval.Pipeline{Decl: nameTok.text, DeclTag: p.tag(nameTok), Stages: stages}, nil
	}

	stages, err := p.parseStages()
	if err != nil {
		return nil, err
	}
	return &eval.Pipeline{Stages: stages}, nil
}

func (p *parser) parseStages() ([]eval.Stage, error) {
	var stages []eval.Stage
	for {
		st, err := p.parseStage()
		if err != nil {
			return nil, err
		}
		stages = append(stages, st)
		if p.peek().kind != tokPipe {
			return stages, nil
		}
		p.next()
		// A pipe may end a line; the pipeline continues on the next.
		p.skipSemis()
		if p.peek().kind == tokEOF {
			return nil, p.failIncomplete(p.peek(), "expected a command after '|'")
		}
	}
}

// parseStage reads one pipeline element. A leading bare word is a
// command call; anything else is an expression producing the stage's
// data directly.
func (p *parser) parseStage() (eval.Stage, error) {
	t := p.peek()
	if t.kind == tokWord && !isLiteralWord(t.text) && t.text != "not" {
		return p.parseCall()
	}
	e, err := p.parseExpr()
	if err != nil {
		return eval.Stage{}, err
	}
	return eval.ExprStage(e), nil
}

// parseCall reads a command call. The name greedily joins consecutive
// bare words while the joined name is registered, so subcommand forms
// like "str length" resolve; an unknown head stays a single word and
// the engine reports it with suggestions.
func (p *parser) parseCall() (eval.Stage, error) {
	nameTok := p.next()
	name := nameTok.text
	endTok := nameTok

	cand := name
	take := 0
	for k := 0; k < 2; k++ {
		nt := p.peekAt(k)
		if nt.kind != tokWord {
			break
		}
		cand += " " + nt.text
		if _, ok := p.es.Command(cand); ok {
			name = cand
			take = k + 1
		}
	}
	for ; take > 0; take-- {
		endTok = p.next()
	}
	nameTag := p.tagBetween(nameTok, endTok)

	var positional []eval.Expr
	var named []eval.NamedArg
	for {
		t := p.peek()
		switch t.kind {
		case tokEOF, tokPipe, tokSemi, tokRParen, tokRBrace, tokRBracket, tokComma:
			return eval.Stage{Name: name, NameTag: nameTag, Positional: positional, Named: named}, nil
		case tokFlagLong, tokFlagShort:
			p.next()
			arg := eval.NamedArg{Name: t.lit, NameTag: p.tag(t)}
			if p.flagTakesValue(name, t.lit) {
				eq := p.peek().kind == tokAssign
				if eq {
					p.next()
				}
				if eq || startsExpr(p.peek()) {
					v, err := p.parseArgExpr()
					if err != nil {
						return eval.Stage{}, err
					}
					arg.Value = v
				}
			}
			named = append(named, arg)
		default:
			v, err := p.parseArgExpr()
			if err != nil {
				return eval.Stage{}, err
			}
			positional = append(positional, v)
		}
	}
}

// flagTakesValue reports whether the named flag of a registered command
// declares a value type. Unknown commands and unknown flags parse as
// bare switches; binding reports them properly at run time.
func (p *parser) flagTakesValue(command, flag string) bool {
	cmd, ok := p.es.Command(command)
	if !ok {
		return false
	}
	for _, sig := range cmd.Signatures() {
		for _, f := range sig.Flags {
			if f.Long == flag || (len(flag) == 1 && f.Short == flag) {
				return f.Type != nil
			}
		}
	}
	return false
}

// parseArgExpr reads one call argument: a postfix-chained primary, a
// leading-minus number, or a range. Infix math in argument position
// needs parentheses, the way shells keep word lists unambiguous.
func (p *parser) parseArgExpr() (eval.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseRangeTail(lhs)
}

func (p *parser) parseRangeTail(lhs eval.Expr) (eval.Expr, error) {
	t := p.peek()
	if t.kind != tokDotDot && t.kind != tokDotDotLt {
		return lhs, nil
	}
	p.next()
	at := lhs.Tag().Until(p.tag(t))
	var to eval.Expr
	if startsExpr(p.peek()) {
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		to = rhs
		at = lhs.Tag().Until(rhs.Tag())
	}
	return &eval.RangeExpr{From: lhs, To: to, Inclusive: t.kind == tokDotDot, At: at}, nil
}

// Expression grammar, loosest first: or, and, comparison, range,
// additive, multiplicative, unary, postfix.

func (p *parser) parseExpr() (eval.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (eval.Expr, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokWord && p.peek().text == "or" {
		opTok := p.next()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &eval.BinaryExpr{Op: value.OpOr, Lhs: lhs, Rhs: rhs, At: p.tag(opTok)}
	}
	return lhs, nil
}

func (p *parser) parseAnd() (eval.Expr, error) {
	lhs, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokWord && p.peek().text == "and" {
		opTok := p.next()
		rhs, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		lhs = &eval.BinaryExpr{Op: value.OpAnd, Lhs: lhs, Rhs: rhs, At: p.tag(opTok)}
	}
	return lhs, nil
}

func (p *parser) parseCompare() (eval.Expr, error) {
	lhs, err := p.parseRangeLevel()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp {
		var op value.Operator
		switch p.peek().text {
		case "==":
			op = value.OpEq
		case "!=":
			op = value.OpNe
		case "<":
			op = value.OpLt
		case "<=":
			op = value.OpLe
		case ">":
			op = value.OpGt
		case ">=":
			op = value.OpGe
		default:
			return lhs, nil
		}
		opTok := p.next()
		rhs, err := p.parseRangeLevel()
		if err != nil {
			return nil, err
		}
		lhs = &eval.BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs, At: p.tag(opTok)}
	}
	return lhs, nil
}

func (p *parser) parseRangeLevel() (eval.Expr, error) {
	lhs, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	return p.parseRangeTail(lhs)
}

func (p *parser) parseAdd() (eval.Expr, error) {
	lhs, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOp {
		var op value.Operator
		switch p.peek().text {
		case "+":
			op = value.OpAdd
		case "-":
			op = value.OpSub
		case "++":
			op = value.OpAppend
		default:
			return lhs, nil
		}
		opTok := p.next()
		rhs, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		lhs = &eval.BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs, At: p.tag(opTok)}
	}
	return lhs, nil
}

func (p *parser) parseMul() (eval.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		var op value.Operator
		switch {
		case t.kind == tokOp && t.text == "*":
			op = value.OpMul
		case t.kind == tokOp && t.text == "/":
			op = value.OpDiv
		case t.kind == tokWord && t.text == "mod":
			op = value.OpMod
		default:
			return lhs, nil
		}
		opTok := p.next()
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = &eval.BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs, At: p.tag(opTok)}
	}
}

func (p *parser) parseUnary() (eval.Expr, error) {
	t := p.peek()
	if t.kind == tokWord && t.text == "not" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &eval.UnaryExpr{Op: eval.UnaryNot, Operand: operand, At: p.tag(t).Until(operand.Tag())}, nil
	}
	if t.kind == tokOp && t.text == "-" {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &eval.UnaryExpr{Op: eval.UnaryNeg, Operand: operand, At: p.tag(t).Until(operand.Tag())}, nil
	}
	return p.parsePostfix()
}

// parsePostfix reads a primary and any trailing cell path. A bare word
// followed by '.' is a headless cell-path literal (get user.name); a
// path on $env reads one environment entry.
func (p *parser) parsePostfix() (eval.Expr, error) {
	if p.peek().kind == tokWord && !isLiteralWord(p.peek().text) && p.peekAt(1).kind == tokDot {
		wordTok := p.next()
		members := []cellpath.Member{cellpath.Field(wordTok.text, p.tag(wordTok))}
		members, endTag, err := p.parseMembers(members)
		if err != nil {
			return nil, err
		}
		return &eval.CellPathExpr{
			Path: cellpath.New(members...),
			At:   p.tag(wordTok).Until(endTag),
		}, nil
	}

	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokDot {
		return base, nil
	}

	if ev, ok := base.(*eval.EnvVar); ok && ev.Name == "" {
		p.next()
		nameTok := p.next()
		var name string
		switch nameTok.kind {
		case tokWord:
			name = nameTok.text
		case tokString:
			name = nameTok.lit
		default:
			return nil, p.fail(nameTok, "expected an environment variable name after '$env.'")
		}
		env := &eval.EnvVar{Name: name, At: ev.At.Until(p.tag(nameTok))}
		if p.peek().kind != tokDot {
			return env, nil
		}
		members, endTag, err := p.parseMembers(nil)
		if err != nil {
			return nil, err
		}
		return &eval.CellPathExpr{Head: env, Path: cellpath.New(members...), At: env.At.Until(endTag)}, nil
	}

	members, endTag, err := p.parseMembers(nil)
	if err != nil {
		return nil, err
	}
	return &eval.CellPathExpr{Head: base, Path: cellpath.New(members...), At: base.Tag().Until(endTag)}, nil
}

// parseMembers reads '.' separated path members onto the given prefix.
// Numeric members become index accesses; a trailing '?' marks the
// member optional. The lexer reads "items.1.0" with a float in the
// middle, so float tokens split back into two indexes here.
func (p *parser) parseMembers(members []cellpath.Member) ([]cellpath.Member, source.Tag, error) {
	endTag := source.UnknownTag()
	if len(members) > 0 {
		endTag = members[len(members)-1].Tag
	}
	for p.peek().kind == tokDot {
		p.next()
		mt := p.next()
		switch mt.kind {
		case tokWord:
			members = append(members, cellpath.Field(mt.text, p.tag(mt)))
		case tokString:
			members = append(members, cellpath.Field(mt.lit, p.tag(mt)))
		case tokInt:
			idx, err := strconv.Atoi(mt.lit)
			if err != nil {
				return nil, endTag, p.fail(mt, "index is too large")
			}
			members = append(members, cellpath.Index(idx, p.tag(mt)))
		case tokFloat:
			parts := strings.SplitN(mt.lit, ".", 2)
			first, err1 := strconv.Atoi(parts[0])
			second, err2 := strconv.Atoi(parts[1])
			if err1 != nil || err2 != nil {
				return nil, endTag, p.fail(mt, "index is too large")
			}
			mid := mt.start + len(parts[0])
			members = append(members,
				cellpath.Index(first, source.NewTag(source.NewSpan(mt.start, mid), p.anchor)),
				cellpath.Index(second, source.NewTag(source.NewSpan(mid+1, mt.end), p.anchor)))
		case tokEOF:
			return nil, endTag, p.failIncomplete(mt, "expected a column name or index after '.'")
		default:
			return nil, endTag, p.fail(mt, "expected a column name or index after '.'")
		}
		if p.peek().kind == tokQuestion {
			p.next()
			members[len(members)-1] = members[len(members)-1].AsOptional()
		}
		endTag = members[len(members)-1].Tag
	}
	return members, endTag, nil
}

func (p *parser) parsePrimary() (eval.Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokInt:
		p.next()
		n, err := strconv.ParseInt(t.lit, 10, 64)
		if err != nil {
			return nil, p.fail(t, "integer is too large")
		}
		return &eval.Literal{Value: value.Int(n, p.tag(t)), At: p.tag(t)}, nil
	case tokFloat:
		p.next()
		f, err := strconv.ParseFloat(t.lit, 64)
		if err != nil {
			return nil, p.fail(t, "malformed number")
		}
		return &eval.Literal{Value: value.Float(f, p.tag(t)), At: p.tag(t)}, nil
	case tokString:
		p.next()
		return &eval.Literal{Value: value.String(t.lit, p.tag(t)), At: p.tag(t)}, nil
	case tokVar:
		p.next()
		if t.lit == "env" {
			return &eval.EnvVar{Name: "", At: p.tag(t)}, nil
		}
		return &eval.Var{Name: t.lit, At: p.tag(t)}, nil
	case tokWord:
		p.next()
		switch t.text {
		case "true":
			return &eval.Literal{Value: value.Bool(true, p.tag(t)), At: p.tag(t)}, nil
		case "false":
			return &eval.Literal{Value: value.Bool(false, p.tag(t)), At: p.tag(t)}, nil
		case "null":
			return &eval.Literal{Value: value.Nothing(p.tag(t)), At: p.tag(t)}, nil
		}
		// Bare words in value position are strings: def greet, [a b c].
		return &eval.Literal{Value: value.String(t.text, p.tag(t)), At: p.tag(t)}, nil
	case tokLBracket:
		return p.parseList()
	case tokLBrace:
		return p.parseBraced()
	case tokLParen:
		return p.parseSubExpr()
	case tokEOF:
		return nil, p.failIncomplete(t, "expected an expression")
	default:
		return nil, p.fail(t, "expected an expression, found "+describe(t))
	}
}

func (p *parser) parseList() (eval.Expr, error) {
	open := p.next()
	var items []eval.Expr
	for {
		p.skipSoft()
		t := p.peek()
		if t.kind == tokRBracket {
			closeTok := p.next()
			return &eval.ListExpr{Items: items, At: p.tagBetween(open, closeTok)}, nil
		}
		if t.kind == tokEOF {
			return nil, p.failIncomplete(t, "expected ']'")
		}
		e, err := p.parseArgExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
}

// parseBraced disambiguates '{': a leading '|' opens closure
// parameters, a 'key:' shape opens a record, and anything else is a
// parameterless closure body. Empty braces are the empty record.
func (p *parser) parseBraced() (eval.Expr, error) {
	open := p.next()
	j := 0
	for p.peekAt(j).kind == tokSemi {
		j++
	}
	first := p.peekAt(j)
	switch {
	case first.kind == tokPipe:
		return p.parseClosureParams(open)
	case first.kind == tokRBrace:
		p.skipSemis()
		closeTok := p.next()
		return &eval.RecordExpr{At: p.tagBetween(open, closeTok)}, nil
	case (first.kind == tokWord || first.kind == tokString) && p.peekAt(j+1).kind == tokColon:
		return p.parseRecord(open)
	default:
		return p.parseClosureBody(open, nil)
	}
}

func (p *parser) parseClosureParams(open token) (eval.Expr, error) {
	p.skipSemis()
	p.next() // opening '|'
	var params []string
	for {
		t := p.peek()
		switch t.kind {
		case tokPipe:
			p.next()
			return p.parseClosureBody(open, params)
		case tokComma:
			p.next()
		case tokWord:
			p.next()
			params = append(params, t.text)
		case tokEOF:
			return nil, p.failIncomplete(t, "expected '|' to close the parameter list")
		default:
			return nil, p.fail(t, "expected a parameter name, found "+describe(t))
		}
	}
}

func (p *parser) parseClosureBody(open token, params []string) (eval.Expr, error) {
	block, err := p.parseBlock(tokRBrace)
	if err != nil {
		return nil, err
	}
	closeTok := p.next()
	return &eval.ClosureExpr{
		Params:  params,
		BlockID: p.es.AddBlock(block),
		At:      p.tagBetween(open, closeTok),
	}, nil
}

func (p *parser) parseRecord(open token) (eval.Expr, error) {
	var entries []eval.RecordEntry
	for {
		p.skipSoft()
		t := p.peek()
		if t.kind == tokRBrace {
			closeTok := p.next()
			return &eval.RecordExpr{Entries: entries, At: p.tagBetween(open, closeTok)}, nil
		}
		if t.kind == tokEOF {
			return nil, p.failIncomplete(t, "expected '}'")
		}
		keyTok := p.next()
		var key string
		switch keyTok.kind {
		case tokWord:
			key = keyTok.text
		case tokString:
			key = keyTok.lit
		default:
			return nil, p.fail(keyTok, "expected a column name, found "+describe(keyTok))
		}
		if p.peek().kind != tokColon {
			return nil, p.fail(p.peek(), "expected ':' after the column name")
		}
		p.next()
		val, err := p.parseArgExpr()
		if err != nil {
			return nil, err
		}
		entries = append(entries, eval.RecordEntry{Name: key, NameTag: p.tag(keyTok), Value: val})
	}
}

func (p *parser) parseSubExpr() (eval.Expr, error) {
	open := p.next()
	p.skipSemis()
	pl, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	p.skipSemis()
	t := p.peek()
	if t.kind != tokRParen {
		if t.kind == tokEOF {
			return nil, p.failIncomplete(t, "expected ')'")
		}
		return nil, p.fail(t, "expected ')', found "+describe(t))
	}
	closeTok := p.next()
	return &eval.SubExpr{Pipeline: pl, At: p.tagBetween(open, closeTok)}, nil
}
