// Package tokenizer implements pass 1 of the loader: a streaming lexer over
// a raw SPF (STEP physical file) byte buffer that writes a token stream to
// a tape.Tape. See spec.md §4.D.
//
// Only lines whose first non-whitespace byte is '#' produce meaningful
// tokens; everything else (HEADER; ISO-10303-21; and friends) is skipped
// byte-for-byte but still closes with a single LINE_END, so downstream line
// numbering stays aligned with the source.
package tokenizer

import (
	"github.com/ssured/web-ifc/internal/numparse"
	"github.com/ssured/web-ifc/internal/tape"
	"github.com/ssured/web-ifc/internal/token"
)

// Tokenize reads src once and appends its token stream to tp. It never
// returns an error: malformed input degrades to whatever tokens could be
// recognized, per spec.md §7.
func Tokenize(src []byte, tp *tape.Tape) {
	i, n := 0, len(src)
	for i < n {
		j := i
		for j < n && isSpace(src[j]) {
			j++
		}
		if j >= n {
			break // only trailing whitespace left; nothing to terminate
		}
		isSTEPLine := src[j] == '#'
		i = j

		terminated := false
		for i < n {
			b := src[i]
			switch {
			case b == ';':
				tp.PushByte(byte(token.LineEnd))
				i++
				terminated = true
			case isSpace(b):
				i++
				continue
			case !isSTEPLine:
				i++
				continue
			case b == '\'':
				i = scanString(src, i, tp)
				continue
			case b == '#':
				i = scanRef(src, i, tp)
				continue
			case b == '$' || b == '*':
				tp.PushByte(byte(token.Empty))
				i++
				continue
			case b == '(':
				tp.PushByte(byte(token.SetBegin))
				i++
				continue
			case b == ')':
				tp.PushByte(byte(token.SetEnd))
				i++
				continue
			case b >= '0' && b <= '9':
				i = scanNumber(src, i, tp)
				continue
			case b == '.':
				i = scanEnum(src, i, tp)
				continue
			case b >= 'A' && b <= 'Z':
				i = scanIdentifier(src, i, tp)
				continue
			default:
				i++
				continue
			}
			break
		}
		if !terminated {
			// EOF mid-line: still emit the closing LINE_END (spec.md §4.D EOF behavior).
			tp.PushByte(byte(token.LineEnd))
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// scanString consumes a quoted string starting at the opening quote src[i].
// It scans for the next "'" unconditionally: per spec.md §9 this format's
// backslash-escape tracking is observed but never actually guards the
// terminator, so a lone \' ends the string exactly like a bare '.
func scanString(src []byte, i int, tp *tape.Tape) int {
	n := len(src)
	start := uint32(i + 1)
	j := i + 1
	for j < n && src[j] != '\'' {
		j++
	}
	tp.PushByte(byte(token.String))
	tp.PushUint32(start)
	tp.PushUint32(uint32(j))
	if j < n {
		j++
	}
	return j
}

// scanRef consumes '#' followed by a decimal express-id.
func scanRef(src []byte, i int, tp *tape.Tape) int {
	n := len(src)
	j := i + 1
	var val uint32
	for j < n && src[j] >= '0' && src[j] <= '9' {
		val = val*10 + uint32(src[j]-'0')
		j++
	}
	tp.PushByte(byte(token.Ref))
	tp.PushUint32(val)
	return j
}

// scanNumber consumes a decimal literal via numparse. The sign is resolved
// by peeking at the byte immediately preceding i, since '-' itself is
// consumed (and ignored) by the default case one iteration earlier.
func scanNumber(src []byte, i int, tp *tape.Tape) int {
	neg := i > 0 && src[i-1] == '-'
	val, consumed := numparse.Parse(src[i:])
	if neg {
		val = -val
	}
	tp.PushByte(byte(token.Real))
	tp.PushFloat64(val)
	return i + consumed
}

// scanEnum consumes a dot-delimited enum token, e.g. .TRUE.
func scanEnum(src []byte, i int, tp *tape.Tape) int {
	n := len(src)
	start := uint32(i + 1)
	j := i + 1
	for j < n && src[j] != '.' {
		j++
	}
	tp.PushByte(byte(token.Enum))
	tp.PushUint32(start)
	tp.PushUint32(uint32(j))
	if j < n {
		j++
	}
	return j
}

// scanIdentifier consumes [A-Z0-9]+, the lexical shape of both the entity
// type name and any other bare identifier in an instance line.
func scanIdentifier(src []byte, i int, tp *tape.Tape) int {
	n := len(src)
	start := uint32(i)
	j := i
	for j < n && ((src[j] >= 'A' && src[j] <= 'Z') || (src[j] >= '0' && src[j] <= '9')) {
		j++
	}
	tp.PushByte(byte(token.String))
	tp.PushUint32(start)
	tp.PushUint32(uint32(j))
	return j
}
