package main

import (
	"strings"
)

// tokenKind classifies one lexed token.
type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokInt
	tokFloat
	tokString
	tokVar
	tokFlagLong
	tokFlagShort
	tokPipe
	tokSemi
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokLBrace
	tokRBrace
	tokComma
	tokColon
	tokDot
	tokDotDot
	tokDotDotLt
	tokQuestion
	tokAssign
	tokOp
)

// token is one lexed unit with its byte span in the source line.
type token struct {
	kind  tokenKind
	text  string // raw text as written
	lit   string // decoded payload for strings, name for vars and flags
	start int
	end   int
}

// lexError reports a lexing failure at a byte offset. incomplete marks
// failures that more input could fix (an unterminated string), so the
// REPL keeps reading instead of rejecting the line.
type lexError struct {
	msg        string
	offset     int
	incomplete bool
}

func (e *lexError) Error() string { return e.msg }

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordChar(c byte) bool {
	return isWordStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// lex tokenizes src. Newlines come out as tokSemi so the parser treats
// them as pipeline separators; the parser decides where separators are
// meaningful.
func lex(src string) ([]token, *lexError) {
	var toks []token
	i := 0
	emit := func(kind tokenKind, start int, text, lit string) {
		toks = append(toks, token{kind: kind, text: text, lit: lit, start: start, end: start + len(text)})
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '\n':
			emit(tokSemi, i, "\n", "")
			i++
		case c == ';':
			emit(tokSemi, i, ";", "")
			i++
		case c == '|':
			emit(tokPipe, i, "|", "")
			i++
		case c == '(':
			emit(tokLParen, i, "(", "")
			i++
		case c == ')':
			emit(tokRParen, i, ")", "")
			i++
		case c == '[':
			emit(tokLBracket, i, "[", "")
			i++
		case c == ']':
			emit(tokRBracket, i, "]", "")
			i++
		case c == '{':
			emit(tokLBrace, i, "{", "")
			i++
		case c == '}':
			emit(tokRBrace, i, "}", "")
			i++
		case c == ',':
			emit(tokComma, i, ",", "")
			i++
		case c == ':':
			emit(tokColon, i, ":", "")
			i++
		case c == '?':
			emit(tokQuestion, i, "?", "")
			i++
		case c == '.':
			if strings.HasPrefix(src[i:], "..<") {
				emit(tokDotDotLt, i, "..<", "")
				i += 3
			} else if strings.HasPrefix(src[i:], "..") {
				emit(tokDotDot, i, "..", "")
				i += 2
			} else {
				emit(tokDot, i, ".", "")
				i++
			}
		case c == '"' || c == '\'':
			tok, lerr := lexString(src, i)
			if lerr != nil {
				return nil, lerr
			}
			toks = append(toks, tok)
			i = tok.end
		case c == '$':
			start := i
			i++
			for i < len(src) && isWordChar(src[i]) {
				i++
			}
			if i == start+1 {
				return nil, &lexError{msg: "expected a variable name after '$'", offset: start}
			}
			emit(tokVar, start, src[start:i], src[start+1:i])
		case c == '-':
			if strings.HasPrefix(src[i:], "--") && i+2 < len(src) && isWordStart(src[i+2]) {
				start := i
				i += 2
				for i < len(src) && (isWordChar(src[i]) || src[i] == '-') {
					i++
				}
				emit(tokFlagLong, start, src[start:i], src[start+2:i])
				continue
			}
			if i+1 < len(src) && isWordStart(src[i+1]) {
				start := i
				i++
				for i < len(src) && (isWordChar(src[i]) || src[i] == '-') {
					i++
				}
				emit(tokFlagShort, start, src[start:i], src[start+1:i])
				continue
			}
			emit(tokOp, i, "-", "")
			i++
		case isDigit(c):
			tok := lexNumber(src, i)
			toks = append(toks, tok)
			i = tok.end
		case isWordStart(c):
			start := i
			for i < len(src) {
				if isWordChar(src[i]) {
					i++
					continue
				}
				// Hyphens join words like sort-by; a trailing hyphen
				// is the minus operator.
				if src[i] == '-' && i+1 < len(src) && isWordChar(src[i+1]) {
					i += 2
					continue
				}
				break
			}
			emit(tokWord, start, src[start:i], "")
		default:
			op, ok := lexOperator(src, i)
			if !ok {
				return nil, &lexError{msg: "unexpected character '" + string(rune(c)) + "'", offset: i}
			}
			toks = append(toks, op)
			i = op.end
		}
	}
	toks = append(toks, token{kind: tokEOF, start: len(src), end: len(src)})
	return toks, nil
}

// lexOperator recognizes the punctuation operators. Word operators
// (and, or, mod, not) lex as words.
func lexOperator(src string, i int) (token, bool) {
	two := ""
	if i+2 <= len(src) {
		two = src[i : i+2]
	}
	switch two {
	case "==", "!=", "<=", ">=", "++":
		return token{kind: tokOp, text: two, start: i, end: i + 2}, true
	}
	switch src[i] {
	case '+', '*', '/', '<', '>':
		return token{kind: tokOp, text: string(src[i]), start: i, end: i + 1}, true
	case '=':
		return token{kind: tokAssign, text: "=", start: i, end: i + 1}, true
	}
	return token{}, false
}

// lexNumber reads an integer or float. Underscore separators are
// accepted and stripped; "1..3" keeps the dots for the range operator.
func lexNumber(src string, start int) token {
	i := start
	for i < len(src) && (isDigit(src[i]) || src[i] == '_') {
		i++
	}
	kind := tokInt
	if i < len(src) && src[i] == '.' && i+1 < len(src) && isDigit(src[i+1]) {
		kind = tokFloat
		i++
		for i < len(src) && (isDigit(src[i]) || src[i] == '_') {
			i++
		}
	}
	text := src[start:i]
	return token{kind: kind, text: text, lit: strings.ReplaceAll(text, "_", ""), start: start, end: i}
}

// lexString reads a quoted string. Double quotes decode backslash
// escapes; single quotes are raw.
func lexString(src string, start int) (token, *lexError) {
	quote := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		if c == quote {
			return token{kind: tokString, text: src[start : i+1], lit: b.String(), start: start, end: i + 1}, nil
		}
		if quote == '"' && c == '\\' {
			if i+1 >= len(src) {
				break
			}
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case '\'':
				b.WriteByte('\'')
			default:
				return token{}, &lexError{msg: "unknown escape '\\" + string(src[i]) + "'", offset: i - 1}
			}
			i++
			continue
		}
		b.WriteByte(c)
		i++
	}
	return token{}, &lexError{msg: "unterminated string", offset: start, incomplete: true}
}
