// Package webifc implements the core of an IFC STEP-file loader: a
// two-pass tokenizer and indexer that ingests a STEP physical-file-format
// (SPF) text stream and produces a compact, random-access binary
// representation (the tape) together with lookup tables that let
// downstream geometry/property code locate any entity instance by its
// numeric express-id or by its type.
//
// Geometry extraction, IFC schema semantics, and disk I/O are explicitly
// out of scope — see spec.md §1. The loader is single-threaded and
// synchronous: LoadFile blocks for the duration of both passes, and after
// it returns, the tape and indexes are immutable.
package webifc

import (
	"fmt"

	"github.com/ssured/web-ifc/internal/ifccrc"
	"github.com/ssured/web-ifc/internal/indexer"
	"github.com/ssured/web-ifc/internal/tape"
	"github.com/ssured/web-ifc/internal/token"
	"github.com/ssured/web-ifc/internal/tokenizer"
)

// Loader holds the tape and indexes produced by LoadFile. The zero value is
// an unopened Loader; use NewLoader for clarity at call sites.
type Loader struct {
	src  []byte
	tp   *tape.Tape
	idx  *indexer.Index
	cur  uint32 // line index the read cursor was last positioned at, for panics
	open bool
}

// NewLoader returns an empty, unopened Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile runs both passes over content: the tokenizer (pass 1) and the
// indexer (pass 2). content must remain live for the lifetime of the
// Loader, since STRING/ENUM tokens reference it by offset (spec.md §3).
//
// LoadFile only rejects truly unusable input (a nil buffer); everything
// else spec.md §7 calls "malformed-but-tolerated" is absorbed silently by
// the tokenizer and indexer.
func (l *Loader) LoadFile(content []byte) error {
	if content == nil {
		return fmt.Errorf("webifc: LoadFile: content must not be nil")
	}
	l.src = content
	l.tp = tape.New()
	tokenizer.Tokenize(content, l.tp)
	l.idx = indexer.Build(l.tp)
	l.open = true
	return nil
}

// IsOpen reports whether LoadFile has completed successfully.
func (l *Loader) IsOpen() bool { return l.open }

// NumLines returns the number of line records produced by the indexer.
func (l *Loader) NumLines() int { return l.idx.NumLines() }

// LineIDsWithType returns the ordered line-index list for a type
// fingerprint (as produced by Crc32 over a type name). The slice is owned
// by the Loader; callers must not mutate it.
func (l *Loader) LineIDsWithType(ifcType uint32) []uint32 {
	return l.idx.LineIDsWithType(ifcType)
}

// ExpressIDsWithType materializes the express-ids of every line with the
// given type fingerprint, in source order.
func (l *Loader) ExpressIDsWithType(ifcType uint32) []uint32 {
	return l.idx.ExpressIDsWithType(ifcType)
}

// ExpressIDToLineID looks up the line index for an express-id, or 0 (the
// sentinel) if absent; callers must check, per spec.md §8.
func (l *Loader) ExpressIDToLineID(expressID uint32) uint32 {
	return l.idx.ExpressIDToLineID(expressID)
}

// GetLineType returns the type fingerprint of the line defining expressID,
// without the caller needing a separate ExpressIDToLineID round trip
// (supplemented from original_source/web-ifc-cpp/web-ifc.h's GetLineType).
func (l *Loader) GetLineType(expressID uint32) uint32 {
	return l.idx.Lines[l.idx.ExpressIDToLineID(expressID)].IfcType
}

// Crc32 exposes the fingerprint function so callers can compute fingerprints
// for the IFC type names declared in the schema header (spec.md §6). See
// also Schema, which caches this per type name.
func Crc32(b []byte) uint32 {
	return ifccrc.Fingerprint(b)
}

// MoveTo positions the read cursor at an absolute tape offset, such as one
// returned by GetSetArgument. It is the caller's responsibility to know
// what token, if any, lives at offset.
func (l *Loader) MoveTo(offset uint32) {
	l.tp.MoveTo(offset)
}

// MoveToLine positions the read cursor at the first token of lineID.
func (l *Loader) MoveToLine(lineID uint32) {
	l.cur = lineID
	l.tp.MoveTo(l.idx.Lines[lineID].TapeOffset)
}

// MoveToArgument positions the read cursor at the start of argument k of
// lineID. Argument 0 is the first value inside the line's top-level
// SET_BEGIN; the express-id, type name, and that leading SET_BEGIN are
// skipped first. A nested list counts as a single argument: MoveToArgument
// never descends into it.
func (l *Loader) MoveToArgument(lineID uint32, k int) {
	l.MoveToLine(lineID)
	skipValue(l.tp, lineID) // REF(expressID)
	skipValue(l.tp, lineID) // STRING(type name)
	kind := token.Kind(l.tp.ReadByte())
	if kind != token.SetBegin {
		panic(fmt.Sprintf("webifc: MoveToArgument: line %d has no argument list", lineID))
	}
	for i := 0; i < k; i++ {
		skipValue(l.tp, lineID)
	}
}

// GetStringArgument reads a STRING token at the cursor and returns its raw
// source bytes, verbatim (no escape decoding, per spec.md's Non-goals).
func (l *Loader) GetStringArgument() string {
	start, end := l.readOffsetToken(token.String)
	return string(l.src[start:end])
}

// GetEnumArgument reads an ENUM token at the cursor and returns its raw
// interior bytes (the text between the dots), undecoded.
func (l *Loader) GetEnumArgument() string {
	start, end := l.readOffsetToken(token.Enum)
	return string(l.src[start:end])
}

func (l *Loader) readOffsetToken(want token.Kind) (start, end uint32) {
	kind := token.Kind(l.tp.ReadByte())
	if kind != want {
		panic(fmt.Sprintf("webifc: expected %s argument, got %s", want, kind))
	}
	return l.tp.ReadUint32(), l.tp.ReadUint32()
}

// GetDoubleArgument reads a REAL token at the cursor and returns its value.
func (l *Loader) GetDoubleArgument() float64 {
	kind := token.Kind(l.tp.ReadByte())
	if kind != token.Real {
		panic(fmt.Sprintf("webifc: expected REAL argument, got %s", kind))
	}
	return l.tp.ReadFloat64()
}

// GetRefArgument reads a REF token at the cursor and returns its
// express-id.
func (l *Loader) GetRefArgument() uint32 {
	kind := token.Kind(l.tp.ReadByte())
	if kind != token.Ref {
		panic(fmt.Sprintf("webifc: expected REF argument, got %s", kind))
	}
	return l.tp.ReadUint32()
}

// GetSetArgument consumes a SET_BEGIN at the cursor and returns the tape
// offset of each of its top-level elements (nested sets are skipped as
// opaque single elements), up to the matching SET_END.
func (l *Loader) GetSetArgument() []uint32 {
	kind := token.Kind(l.tp.ReadByte())
	if kind != token.SetBegin {
		panic(fmt.Sprintf("webifc: expected SET_BEGIN, got %s", kind))
	}
	var offsets []uint32
	for {
		pos := l.tp.ReadPos()
		peek := token.Kind(l.tp.ReadByte())
		if peek == token.SetEnd {
			return offsets
		}
		l.tp.MoveTo(pos)
		offsets = append(offsets, pos)
		skipValue(l.tp, l.cur)
	}
}

// CopyTapeForExpressLine copies the tape bytes spanning expressID's line,
// from its own tape offset up to the next line record's tape offset (or
// the tape's write cursor, for the last line).
//
// spec.md §9 flags the original C++ as assuming express-ids e and e+1 are
// both present and contiguous; this rewrite instead uses expressID's line
// index and the next line record in source order, so it works for sparse
// or out-of-order express-ids too.
func (l *Loader) CopyTapeForExpressLine(expressID uint32) []byte {
	lineID := l.idx.ExpressIDToLineID(expressID)
	line := l.idx.Lines[lineID]
	end := l.tp.WriteOffset()
	if next := int(lineID) + 1; next < len(l.idx.Lines) {
		end = l.idx.Lines[next].TapeOffset
	}
	return l.tp.Copy(line.TapeOffset, end)
}

// skipValue consumes one token from tp: if it's SET_BEGIN, the entire
// balanced nested list is consumed opaquely; otherwise just that token and
// its payload. lineID is carried only to produce a useful panic message.
func skipValue(tp *tape.Tape, lineID uint32) {
	kind := token.Kind(tp.ReadByte())
	switch kind {
	case token.Ref:
		tp.ReadUint32()
	case token.String, token.Enum:
		tp.ReadUint32()
		tp.ReadUint32()
	case token.Real:
		tp.ReadFloat64()
	case token.SetBegin:
		depth := 1
		for depth > 0 {
			k := token.Kind(tp.ReadByte())
			switch k {
			case token.Ref:
				tp.ReadUint32()
			case token.String, token.Enum:
				tp.ReadUint32()
				tp.ReadUint32()
			case token.Real:
				tp.ReadFloat64()
			case token.SetBegin:
				depth++
			case token.SetEnd:
				depth--
			case token.LineEnd:
				panic(fmt.Sprintf("webifc: skipValue: ran past end of line %d", lineID))
			}
		}
	case token.LineEnd:
		panic(fmt.Sprintf("webifc: skipValue: ran past end of line %d", lineID))
	}
}
