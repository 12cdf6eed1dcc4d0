// Package indexer implements pass 2 of the loader: it rewinds a tokenized
// tape.Tape and walks it once, producing one Line record per LINE_END and
// two lookup tables: express-id -> line index, and type fingerprint ->
// ordered line-index list. See spec.md §4.E.
//
// The shape mirrors a postings-style index (fingerprint -> ordered id list)
// the way other_examples/4deeda9a_bagaswh-prometheus__index.go.go builds
// its label-value postings: one forward pass, fixed-width records, ordered
// insertion.
package indexer

import (
	"github.com/ssured/web-ifc/internal/ifccrc"
	"github.com/ssured/web-ifc/internal/tape"
	"github.com/ssured/web-ifc/internal/token"
)

// Line is the per-instance-line record spec.md §3 names.
type Line struct {
	ExpressID  uint32
	IfcType    uint32
	LineIndex  uint32
	TapeOffset uint32
}

// Index is the result of pass 2: the line records plus both lookup tables.
// It is built once by Build and never mutated afterward.
type Index struct {
	Lines []Line

	// ExpressIDToLine is dense, sized maxExpressID+1; unused slots hold 0,
	// the "not present" sentinel. Lines without an express-id (header
	// lines) are recorded under slot 0.
	ExpressIDToLine []uint32

	// IfcTypeToLineID maps a type fingerprint to the ordered list of line
	// indices sharing it, in source order.
	IfcTypeToLineID map[uint32][]uint32
}

// Build rewinds tp and walks its token stream, producing an Index.
func Build(tp *tape.Tape) *Index {
	tp.Reverse()

	idx := &Index{
		IfcTypeToLineID: make(map[uint32][]uint32),
	}

	var (
		curExpressID  uint32
		curIfcType    uint32
		curTapeOffset = tp.ReadPos()
		haveExpressID bool
		haveIfcType   bool
		maxExpressID  uint32
	)

	for !tp.AtEnd() {
		kind := token.Kind(tp.ReadByte())
		switch kind {
		case token.Ref:
			v := tp.ReadUint32()
			if !haveExpressID {
				curExpressID = v
				haveExpressID = true
			}
		case token.String, token.Enum:
			start, end := tp.ReadUint32(), tp.ReadUint32()
			if !haveIfcType {
				curIfcType = ifccrc.Fingerprint(tp.Copy(start, end))
				haveIfcType = true
			}
		case token.Real:
			tp.ReadFloat64()
		case token.LineEnd:
			lineIndex := uint32(len(idx.Lines))
			idx.Lines = append(idx.Lines, Line{
				ExpressID:  curExpressID,
				IfcType:    curIfcType,
				LineIndex:  lineIndex,
				TapeOffset: curTapeOffset,
			})
			idx.IfcTypeToLineID[curIfcType] = append(idx.IfcTypeToLineID[curIfcType], lineIndex)
			if curExpressID > maxExpressID {
				maxExpressID = curExpressID
			}
			curExpressID, curIfcType = 0, 0
			haveExpressID, haveIfcType = false, false
			curTapeOffset = tp.ReadPos()
		case token.Empty, token.SetBegin, token.SetEnd, token.Unknown:
			// no payload
		}
	}

	idx.ExpressIDToLine = make([]uint32, maxExpressID+1)
	for _, l := range idx.Lines {
		idx.ExpressIDToLine[l.ExpressID] = l.LineIndex
	}
	return idx
}

// NumLines returns the count of line records.
func (idx *Index) NumLines() int { return len(idx.Lines) }

// LineIDsWithType returns the ordered line-index list for a type
// fingerprint, or nil if none.
func (idx *Index) LineIDsWithType(ifcType uint32) []uint32 {
	return idx.IfcTypeToLineID[ifcType]
}

// ExpressIDsWithType materializes the express-ids of every line with the
// given type fingerprint, in source order.
func (idx *Index) ExpressIDsWithType(ifcType uint32) []uint32 {
	ids := idx.IfcTypeToLineID[ifcType]
	out := make([]uint32, len(ids))
	for i, lineID := range ids {
		out[i] = idx.Lines[lineID].ExpressID
	}
	return out
}

// ExpressIDToLineID looks up the line index for an express-id. Returns 0
// (the sentinel) if e is absent or out of range; callers must check, per
// spec.md §8 boundary behaviour.
func (idx *Index) ExpressIDToLineID(e uint32) uint32 {
	if int(e) >= len(idx.ExpressIDToLine) {
		return 0
	}
	return idx.ExpressIDToLine[e]
}
