/*
 * Copyright 2021 Go YPath Authors
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package ypath

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// This lexer was based on Rob Pike's talk "Lexical Scanning in Go" (https://talks.golang.org/2011/lex.slide#1)

// a lexeme is a token returned from the lexer
type lexeme struct {
	typ  lexemeType
	val  string
	span Span

	kind       ErrorKind  // lexemeError: error classification
	doc        *yaml.Node // lexemeMapKey: the flow document serving as the key
	idx        int        // lexemeSeqIndex
	start, end int        // lexemeSeqSlice; end is sliceOpenEnd when unbounded
}

func (l lexeme) String() string {
	switch l.typ {
	case lexemeEOF:
		return "EOF"

	case lexemeError:
		return l.val

	default:
		return fmt.Sprintf("%q", l.val)
	}
}

type lexemeType int

const (
	lexemeError lexemeType = iota // lexing error (error message is the lexeme value)
	lexemeStreamStart
	lexemeSlash
	lexemeRoot
	lexemeSibling
	lexemeScalarFilter
	lexemeCollectionFilter
	lexemeSeqFilter
	lexemeMapFilter
	lexemeComma
	lexemeParent
	lexemeThis
	lexemeEveryChild
	lexemeEveryChildRecursive
	lexemeAlias
	lexemeSimpleKey
	lexemeMapKey
	lexemeSeqIndex
	lexemeSeqSlice
	lexemeEOF // lexing complete
)

// sliceOpenEnd marks a sequence slice with no upper bound.
const sliceOpenEnd = -1

// simpleKeyStop holds the characters which terminate a simple map key. A
// simple key may not start with any of them, nor with a digit or '-'.
const simpleKeyStop = ",[]{}#&*!|<>'\"%@`?:/ $"

// stateFn represents the state of the lexer as a function that returns the next state.
// A nil stateFn indicates lexing is complete.
type stateFn func(*lexer) stateFn

// lexer holds the state of the scanner.
type lexer struct {
	name  string // name of the lexer; it does not appear in lexemes or error messages
	r     *reader
	start int // start position of this lexeme
	state stateFn
	items chan lexeme // channel of scanned lexemes
	diag  Diag
}

// lex creates a new scanner for the input string, which must already be
// trimmed of surrounding whitespace.
func lex(name, input string, diag Diag) *lexer {
	if diag == nil {
		diag = NopDiag
	}
	return &lexer{
		name:  name,
		r:     newReader(input),
		state: lexStreamStart,
		items: make(chan lexeme, 2),
		diag:  diag,
	}
}

// nextLexeme returns the next item from the input.
func (l *lexer) nextLexeme() lexeme {
	for {
		select {
		case item := <-l.items:
			return item
		default:
			if l.state == nil {
				return lexeme{
					typ: lexemeEOF,
				}
			}
			l.state = l.state(l)
		}
	}
}

// value returns the portion of the current lexeme scanned so far
func (l *lexer) value() string {
	return l.r.input[l.start:l.r.offset()]
}

// emit passes a lexeme back to the client.
func (l *lexer) emit(typ lexemeType) {
	l.emitLexeme(lexeme{typ: typ})
}

// emitLexeme passes a pre-populated lexeme back to the client, filling in its
// value and span from the scanned portion of the input.
func (l *lexer) emitLexeme(x lexeme) {
	x.val = l.value()
	x.span = Span{Start: l.start, End: l.r.offset()}
	l.items <- x
	l.start = l.r.offset()
}

// errorf returns an error lexeme and terminates the scan
func (l *lexer) errorf(kind ErrorKind, format string, args ...interface{}) stateFn {
	msg := fmt.Sprintf(format, args...)
	s := Span{Start: l.start, End: l.r.offset()}
	l.diag.Errorf(s, "%s", msg)
	l.items <- lexeme{
		typ:  lexemeError,
		val:  msg,
		span: s,
		kind: kind,
	}
	return nil
}

func lexStreamStart(l *lexer) stateFn {
	l.emit(lexemeStreamStart)
	return lexToken
}

func lexToken(l *lexer) stateFn {
	c := l.r.peek()
	switch {
	case c == eof:
		l.emit(lexemeEOF)
		return nil

	case c == invalid || c == partial:
		return l.errorf(ErrorKindLex, "invalid UTF-8 encoding at position %d", l.r.offset())

	case c == '/':
		l.r.next()
		l.emit(lexemeSlash)
		return lexToken

	case c == '^':
		l.r.next()
		l.emit(lexemeRoot)
		return lexToken

	case c == '$':
		l.r.next()
		l.emit(lexemeScalarFilter)
		return lexToken

	case c == '%':
		l.r.next()
		l.emit(lexemeCollectionFilter)
		return lexToken

	case c == ',':
		l.r.next()
		l.emit(lexemeComma)
		return lexToken

	case l.r.match("[]"):
		l.r.advanceBy(2)
		l.emit(lexemeSeqFilter)
		return lexToken

	case l.r.match("{}"):
		l.r.advanceBy(2)
		l.emit(lexemeMapFilter)
		return lexToken

	case l.r.match(".."):
		l.r.advanceBy(2)
		l.emit(lexemeParent)
		return lexToken

	case c == '.':
		l.r.next()
		l.emit(lexemeThis)
		return lexToken

	case l.r.match("**"):
		l.r.advanceBy(2)
		l.emit(lexemeEveryChildRecursive)
		return lexToken

	case c == '*':
		if isAlpha(l.r.peekAt(1)) {
			return lexAlias
		}
		l.r.next()
		l.emit(lexemeEveryChild)
		return lexToken

	case c == '"' || c == '\'' || c == '{' || c == '[':
		return lexFlowKey

	case isDigit(c) || (c == '-' && isDigit(l.r.peekAt(1))):
		return lexNumber

	case c == ':':
		l.r.next()
		l.emit(lexemeSibling)
		return lexToken

	case isSimpleKeyStart(c):
		return lexSimpleKey

	default:
		return l.errorf(ErrorKindLex, "invalid path syntax at position %d: unexpected %q", l.r.offset(), c)
	}
}

func lexAlias(l *lexer) stateFn {
	l.r.next() // '*'
	for isAlnum(l.r.peek()) {
		l.r.next()
	}
	l.diag.Noticef(Span{Start: l.start, End: l.r.offset()}, "alias %s", l.value()[1:])
	l.emit(lexemeAlias)
	return lexToken
}

func lexSimpleKey(l *lexer) stateFn {
	for !isSimpleKeyStop(l.r.peek()) {
		l.r.next()
	}
	l.diag.Noticef(Span{Start: l.start, End: l.r.offset()}, "simple key %q", l.value())
	l.emit(lexemeSimpleKey)
	return lexToken
}

func lexNumber(l *lexer) stateFn {
	if l.r.peek() == '-' {
		l.r.next()
	}
	for isDigit(l.r.peek()) {
		l.r.next()
	}
	lead := l.value()
	n, err := strconv.Atoi(lead)
	if err != nil {
		ne := err.(*strconv.NumError)
		return l.errorf(ErrorKindLex, "invalid sequence index %q: %s", ne.Num, ne.Unwrap())
	}

	// "N:" at end of input and "N:M" form slices; slice endpoints are never
	// signed, so a '-' start always yields a plain index
	if lead[0] != '-' && l.r.peek() == ':' {
		switch nx := l.r.peekAt(1); {
		case isDigit(nx):
			l.r.next() // ':'
			mark := l.r.offset()
			for isDigit(l.r.peek()) {
				l.r.next()
			}
			end, err := strconv.Atoi(l.r.input[mark:l.r.offset()])
			if err != nil {
				ne := err.(*strconv.NumError)
				return l.errorf(ErrorKindLex, "invalid sequence slice end %q: %s", ne.Num, ne.Unwrap())
			}
			l.emitLexeme(lexeme{typ: lexemeSeqSlice, start: n, end: end})
			return lexToken

		case nx == eof:
			l.r.next() // ':'
			l.emitLexeme(lexeme{typ: lexemeSeqSlice, start: n, end: sliceOpenEnd})
			return lexToken
		}
		// not a slice: leave ':' to be scanned as the sibling operator
	}

	l.emitLexeme(lexeme{typ: lexemeSeqIndex, idx: n})
	return lexToken
}

// lexFlowKey scans a quoted scalar or flow collection and loads it as a
// self-contained YAML document to key mapping lookups with.
func lexFlowKey(l *lexer) stateFn {
	startc := l.r.next()
	switch startc {
	case '"':
		for {
			switch c := l.r.next(); c {
			case eof, invalid, partial:
				return l.errorf(ErrorKindLex, "unterminated string starting at position %d", l.start)
			case '\\':
				l.r.next() // escaped character
			case '"':
				return l.loadFlowKey()
			}
		}

	case '\'':
		for {
			switch c := l.r.next(); c {
			case eof, invalid, partial:
				return l.errorf(ErrorKindLex, "unterminated string starting at position %d", l.start)
			case '\'':
				if l.r.peek() == '\'' {
					l.r.next() // escaped quote
					continue
				}
				return l.loadFlowKey()
			}
		}

	default: // '{' or '['
		endc := '}'
		if startc == '[' {
			endc = ']'
		}
		nest := 1
		for nest > 0 {
			switch c := l.r.next(); c {
			case eof, invalid, partial:
				return l.errorf(ErrorKindLex, "unterminated flow collection starting at position %d", l.start)
			case startc:
				nest++
			case endc:
				nest--
			}
		}
		return l.loadFlowKey()
	}
}

// loadFlowKey hands the scanned flow literal to the YAML loader and emits the
// resulting document as a map key lexeme.
func (l *lexer) loadFlowKey() stateFn {
	literal := l.value()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(literal), &doc); err != nil {
		return l.errorf(ErrorKindDocument, "malformed key %s: %s", literal, err)
	}
	l.emitLexeme(lexeme{typ: lexemeMapKey, doc: &doc})
	return lexToken
}

func isAlpha(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c rune) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c rune) bool {
	return isAlpha(c) || isDigit(c)
}

func isSimpleKeyStart(c rune) bool {
	return c != eof && c != invalid && c != partial &&
		!isDigit(c) && c != '-' && !strings.ContainsRune(simpleKeyStop, c)
}

func isSimpleKeyStop(c rune) bool {
	return c == eof || c == invalid || c == partial || strings.ContainsRune(simpleKeyStop, c)
}
