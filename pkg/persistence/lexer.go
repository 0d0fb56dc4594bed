package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed is returned for documents that break the grammar.
	ErrMalformed = errors.New("malformed document")
	// ErrIncomplete is returned for documents that end early or miss
	// required fields.
	ErrIncomplete = errors.New("incomplete document")
)

const (
	maxDepth = 4
	// Fits the widest float32 the encoder writes: sign, 39 integer
	// digits, point and 6 fractional digits.
	maxTokenLength = 48
)

type eventKind int

const (
	eventObjectStart eventKind = iota
	eventObjectEnd
	eventArrayStart
	eventArrayEnd
	eventKey
	eventString
	eventNumber
)

func (k eventKind) String() string {
	switch k {
	case eventObjectStart:
		return "'{'"
	case eventObjectEnd:
		return "'}'"
	case eventArrayStart:
		return "'['"
	case eventArrayEnd:
		return "']'"
	case eventKey:
		return "key"
	case eventString:
		return "string"
	case eventNumber:
		return "number"
	}
	return fmt.Sprintf("eventKind(%d)", int(k))
}

type event struct {
	kind eventKind
	text string // key, string or number text
}

// expectation is what the lexer accepts next.
type expectation int

const (
	expectValue expectation = iota
	expectValueOrEnd
	expectKey
	expectKeyOrEnd
	expectColon
	expectCommaOrEnd
	expectEOF
)

// lexer turns a byte stream into structural events, one byte at a time.
// Only the syntax needed by settings and results documents is accepted:
// objects, arrays, plain keys and numbers. The first error is sticky.
type lexer struct {
	emit func(event) error

	stack  []byte
	expect expectation
	tok    []byte
	inStr  bool
	escape bool
	isKey  bool
	inNum  bool
	offset int
	err    error
}

func newLexer(emit func(event) error) *lexer {
	return &lexer{
		emit:  emit,
		stack: make([]byte, 0, maxDepth),
		tok:   make([]byte, 0, maxTokenLength),
	}
}

func (l *lexer) feed(b byte) error {
	if l.err != nil {
		return l.err
	}
	if err := l.step(b); err != nil {
		l.err = fmt.Errorf("offset %d: %w", l.offset, err)
	}
	l.offset++
	return l.err
}

// close validates that the document ended on a complete value.
func (l *lexer) close() error {
	if l.err != nil {
		return l.err
	}
	switch {
	case l.inNum:
		if err := l.endNumber(); err != nil {
			l.err = err
			return err
		}
	case l.inStr:
		l.err = fmt.Errorf("%w: unterminated string", ErrIncomplete)
		return l.err
	}
	if l.expect != expectEOF {
		l.err = fmt.Errorf("%w: unexpected end of input", ErrIncomplete)
	}
	return l.err
}

func (l *lexer) step(b byte) error {
	if l.inStr {
		return l.stringByte(b)
	}
	if l.inNum {
		if isNumberByte(b) {
			return l.push(b)
		}
		if err := l.endNumber(); err != nil {
			return err
		}
	}
	if isSpace(b) {
		return nil
	}

	switch l.expect {
	case expectValue, expectValueOrEnd:
		if b == ']' && l.expect == expectValueOrEnd {
			return l.closeContainer('[')
		}
		return l.value(b)
	case expectKey, expectKeyOrEnd:
		if b == '}' && l.expect == expectKeyOrEnd {
			return l.closeContainer('{')
		}
		if b != '"' {
			return fmt.Errorf("%w: expected key, got %q", ErrMalformed, b)
		}
		l.inStr, l.isKey = true, true
		return nil
	case expectColon:
		if b != ':' {
			return fmt.Errorf("%w: expected ':', got %q", ErrMalformed, b)
		}
		l.expect = expectValue
		return nil
	case expectCommaOrEnd:
		top := l.stack[len(l.stack)-1]
		switch {
		case b == ',' && top == '{':
			l.expect = expectKey
			return nil
		case b == ',':
			l.expect = expectValue
			return nil
		case b == '}' || b == ']':
			return l.closeContainer(opener(b))
		}
		return fmt.Errorf("%w: expected ',' or end of container, got %q", ErrMalformed, b)
	}
	return fmt.Errorf("%w: trailing content %q", ErrMalformed, b)
}

func (l *lexer) value(b byte) error {
	switch {
	case b == '{' || b == '[':
		if len(l.stack) == maxDepth {
			return fmt.Errorf("%w: nesting deeper than %d", ErrMalformed, maxDepth)
		}
		l.stack = append(l.stack, b)
		if b == '{' {
			l.expect = expectKeyOrEnd
			return l.emit(event{kind: eventObjectStart})
		}
		l.expect = expectValueOrEnd
		return l.emit(event{kind: eventArrayStart})
	case b == '"':
		l.inStr, l.isKey = true, false
		return nil
	case b == '-' || (b >= '0' && b <= '9'):
		l.inNum = true
		return l.push(b)
	}
	return fmt.Errorf("%w: unexpected %q", ErrMalformed, b)
}

func (l *lexer) closeContainer(open byte) error {
	if len(l.stack) == 0 || l.stack[len(l.stack)-1] != open {
		return fmt.Errorf("%w: mismatched bracket", ErrMalformed)
	}
	l.stack = l.stack[:len(l.stack)-1]
	l.afterValue()
	if open == '{' {
		return l.emit(event{kind: eventObjectEnd})
	}
	return l.emit(event{kind: eventArrayEnd})
}

func (l *lexer) stringByte(b byte) error {
	switch {
	case l.escape:
		l.escape = false
		if b != '"' && b != '\\' && b != '/' {
			return fmt.Errorf("%w: unsupported escape \\%c", ErrMalformed, b)
		}
		return l.push(b)
	case b == '\\':
		l.escape = true
		return nil
	case b < 0x20:
		return fmt.Errorf("%w: control character in string", ErrMalformed)
	case b != '"':
		return l.push(b)
	}

	text := string(l.tok)
	l.tok = l.tok[:0]
	l.inStr = false
	if l.isKey {
		l.expect = expectColon
		return l.emit(event{kind: eventKey, text: text})
	}
	l.afterValue()
	return l.emit(event{kind: eventString, text: text})
}

func (l *lexer) endNumber() error {
	text := string(l.tok)
	l.tok = l.tok[:0]
	l.inNum = false
	l.afterValue()
	return l.emit(event{kind: eventNumber, text: text})
}

func (l *lexer) push(b byte) error {
	if len(l.tok) == maxTokenLength {
		return fmt.Errorf("%w: token longer than %d bytes", ErrMalformed, maxTokenLength)
	}
	l.tok = append(l.tok, b)
	return nil
}

func (l *lexer) afterValue() {
	if len(l.stack) == 0 {
		l.expect = expectEOF
		return
	}
	l.expect = expectCommaOrEnd
}

func opener(b byte) byte {
	if b == '}' {
		return '{'
	}
	return '['
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNumberByte(b byte) bool {
	return (b >= '0' && b <= '9') || b == '-' || b == '+' || b == '.' || b == 'e' || b == 'E'
}
