package scan

import (
	"errors"
	"fmt"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/relang/corevm/core/arena"
	"github.com/relang/corevm/core/bind"
	"github.com/relang/corevm/core/cell"
	"github.com/relang/corevm/core/kind"
	"github.com/relang/corevm/core/limits"
	"github.com/relang/corevm/core/series"
)

// ErrUnterminated reports a string or nested block/group that ran off the
// end of input.
var ErrUnterminated = errors.New("scan: unterminated literal")

// ErrUnexpectedClose reports a ')' or ']' with no matching opener.
var ErrUnexpectedClose = errors.New("scan: unexpected close delimiter")

// Scanner implements feed.Scanner with the minimal tokenizer this package
// provides. Every array it produces is allocated in Arena.
type Scanner struct {
	Arena *arena.Arena
	Guard *limits.Guard // optional; nil disables nesting-depth checks
}

// New creates a Scanner with no nesting-depth guard.
func New(a *arena.Arena) *Scanner {
	return &Scanner{Arena: a}
}

// NewGuarded creates a Scanner that enforces g's MaxScanDepth on nested
// blocks/groups.
func NewGuarded(a *arena.Arena, g *limits.Guard) *Scanner {
	return &Scanner{Arena: a, Guard: g}
}

// Scan tokenizes src into a flat top-level array of cells, implementing
// feed.Scanner. line is the 1-based starting line number, used only for
// error messages; binder interns word text to Symbol values.
func (s *Scanner) Scan(src []byte, line int, binder *bind.Table) (series.Series, error) {
	norm, err := normalizeUTF8(src)
	if err != nil {
		return series.Series{}, err
	}
	t := &tokenizer{
		src:    []rune(string(norm)),
		line:   line,
		binder: binder,
		arena:  s.Arena,
		guard:  s.Guard,
	}
	arr, err := t.scanArray(0)
	if err != nil {
		return series.Series{}, err
	}
	return arr, nil
}

// normalizeUTF8 validates src as UTF-8, replacing any malformed sequence
// via the standard UTF-8 decoder transform (grounded on internal/regtext's
// up-front encoding normalization pass, adapted here to UTF-8 validation
// rather than UTF-16LE decoding since the runtime's source text is UTF-8).
func normalizeUTF8(src []byte) ([]byte, error) {
	out, _, err := transform.Bytes(xunicode.UTF8.NewDecoder(), src)
	if err != nil {
		return nil, fmt.Errorf("scan: invalid UTF-8 input: %w", err)
	}
	return out, nil
}

type tokenizer struct {
	src    []rune
	pos    int
	line   int
	binder *bind.Table
	arena  *arena.Arena
	guard  *limits.Guard
}

func (t *tokenizer) peek() (rune, bool) {
	if t.pos >= len(t.src) {
		return 0, false
	}
	return t.src[t.pos], true
}

func (t *tokenizer) advance() rune {
	r := t.src[t.pos]
	t.pos++
	if r == '\n' {
		t.line++
	}
	return r
}

func (t *tokenizer) skipSpace() {
	for {
		r, ok := t.peek()
		if !ok || !unicode.IsSpace(r) {
			return
		}
		t.advance()
	}
}

// scanArray scans a flat sequence of values up to end-of-input or a
// matching close delimiter, and returns it as a managed array series.
// closeOn is the rune that ends this level (0 for top level), already
// validated by the caller as the opener's match.
func (t *tokenizer) scanArray(closeOn rune) (series.Series, error) {
	if t.guard != nil {
		if err := t.guard.EnterScan(); err != nil {
			return series.Series{}, err
		}
		defer t.guard.LeaveScan()
	}

	arr := series.Make(t.arena, 0, 0, 0)
	for {
		t.skipSpace()
		r, ok := t.peek()
		if !ok {
			if closeOn != 0 {
				return series.Series{}, fmt.Errorf("%w: missing closing %q", ErrUnterminated, closeOn)
			}
			break
		}
		if r == closeOn && closeOn != 0 {
			t.advance()
			break
		}
		if r == ')' || r == ']' {
			return series.Series{}, fmt.Errorf("%w: stray %q at line %d", ErrUnexpectedClose, r, t.line)
		}

		c, err := t.scanOne()
		if err != nil {
			return series.Series{}, err
		}
		start, err := arr.ExpandTail(1)
		if err != nil {
			return series.Series{}, err
		}
		slot, err := arr.At(start)
		if err != nil {
			return series.Series{}, err
		}
		*slot = c
	}
	if err := arr.Manage(); err != nil {
		return series.Series{}, err
	}
	return arr, nil
}

// scanOne scans exactly one value: an integer, a word-family token, a
// string, or a nested block/group.
func (t *tokenizer) scanOne() (cell.Cell, error) {
	r, _ := t.peek()

	switch {
	case r == '[':
		t.advance()
		sub, err := t.scanArray(']')
		if err != nil {
			return cell.Cell{}, err
		}
		var c cell.Cell
		c.Header.Kind = kind.KindBlock
		c.SetNode(0, sub.Ref())
		return c, nil

	case r == '(':
		t.advance()
		sub, err := t.scanArray(')')
		if err != nil {
			return cell.Cell{}, err
		}
		var c cell.Cell
		c.Header.Kind = kind.KindGroup
		c.SetNode(0, sub.Ref())
		return c, nil

	case r == '"':
		return t.scanString()

	case r == '-' || r == '+' || unicode.IsDigit(r):
		if isDigitStart(t.src, t.pos) {
			return t.scanNumber()
		}
		return t.scanWord()

	case r == ':':
		t.advance()
		word, err := t.scanWordText()
		if err != nil {
			return cell.Cell{}, err
		}
		var c cell.Cell
		c.Header.Kind = kind.KindGetWord
		c.Payload[0] = uint64(t.binder.Intern(word))
		return c, nil

	default:
		return t.scanWord()
	}
}

// isDigitStart reports whether the token beginning at pos is a numeric
// literal rather than a word that merely starts with a sign character
// (e.g. "+" the addition word versus "+1" the integer).
func isDigitStart(src []rune, pos int) bool {
	if pos >= len(src) {
		return false
	}
	r := src[pos]
	if unicode.IsDigit(r) {
		return true
	}
	if (r == '-' || r == '+') && pos+1 < len(src) {
		return unicode.IsDigit(src[pos+1])
	}
	return false
}

func (t *tokenizer) scanNumber() (cell.Cell, error) {
	start := t.pos
	if r, ok := t.peek(); ok && (r == '-' || r == '+') {
		t.advance()
	}
	for {
		r, ok := t.peek()
		if !ok || !unicode.IsDigit(r) {
			break
		}
		t.advance()
	}
	text := string(t.src[start:t.pos])
	var v int64
	neg := false
	i := 0
	if len(text) > 0 && (text[0] == '-' || text[0] == '+') {
		neg = text[0] == '-'
		i = 1
	}
	for ; i < len(text); i++ {
		v = v*10 + int64(text[i]-'0')
	}
	if neg {
		v = -v
	}
	var c cell.Cell
	c.SetInt64(v)
	return c, nil
}

// isWordRune reports whether r may appear in a word token. This is
// deliberately permissive (Rebol-family words allow most punctuation) but
// excludes delimiters, whitespace, and the characters with dedicated
// meaning to this minimal scanner.
func isWordRune(r rune) bool {
	switch r {
	case '[', ']', '(', ')', '"', ';':
		return false
	}
	return !unicode.IsSpace(r)
}

func (t *tokenizer) scanWordText() (string, error) {
	start := t.pos
	for {
		r, ok := t.peek()
		if !ok || !isWordRune(r) {
			break
		}
		t.advance()
	}
	if t.pos == start {
		return "", fmt.Errorf("scan: empty word at line %d", t.line)
	}
	return string(t.src[start:t.pos]), nil
}

func (t *tokenizer) scanWord() (cell.Cell, error) {
	text, err := t.scanWordText()
	if err != nil {
		return cell.Cell{}, err
	}

	var c cell.Cell
	if len(text) > 1 && text[len(text)-1] == ':' {
		c.Header.Kind = kind.KindSetWord
		text = text[:len(text)-1]
	} else {
		c.Header.Kind = kind.KindWord
	}
	c.Payload[0] = uint64(t.binder.Intern(text))
	return c, nil
}

func (t *tokenizer) scanString() (cell.Cell, error) {
	t.advance() // opening quote
	var runes []rune
	for {
		r, ok := t.peek()
		if !ok {
			return cell.Cell{}, fmt.Errorf("%w: string at line %d", ErrUnterminated, t.line)
		}
		t.advance()
		if r == '"' {
			break
		}
		if r == '\\' {
			esc, ok := t.peek()
			if !ok {
				return cell.Cell{}, fmt.Errorf("%w: string at line %d", ErrUnterminated, t.line)
			}
			t.advance()
			switch esc {
			case 'n':
				runes = append(runes, '\n')
			case 't':
				runes = append(runes, '\t')
			default:
				runes = append(runes, esc)
			}
			continue
		}
		runes = append(runes, r)
	}

	text := string(runes)
	buf := series.Make(t.arena, len(text), 1, 0)
	if _, err := buf.ExpandTail(len(text)); err != nil {
		return cell.Cell{}, err
	}
	for i := 0; i < len(text); i++ {
		if err := buf.SetByteAt(i, text[i]); err != nil {
			return cell.Cell{}, err
		}
	}
	if err := buf.Manage(); err != nil {
		return cell.Cell{}, err
	}

	var c cell.Cell
	c.Header.Kind = kind.KindText
	c.SetNode(0, buf.Ref())
	return c, nil
}
