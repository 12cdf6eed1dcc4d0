package webifc

import "github.com/ssured/web-ifc/internal/token"

// GetRefs returns every REF express-id reachable from lineID's argument
// list, including those nested inside lists, in source order.
//
// Unlike original_source/web-ifc-cpp/web-ifc.h's recursive GetRefs, this
// walk is iterative with an explicit depth counter: spec.md §9 flags the
// original as stack-overflow-prone on the cyclic graphs a malformed file
// can produce, and directs a rewrite to avoid recursion.
func (l *Loader) GetRefs(lineID uint32) []uint32 {
	l.MoveToLine(lineID)
	skipValue(l.tp, lineID) // REF(expressID)
	skipValue(l.tp, lineID) // STRING(type name)
	if token.Kind(l.tp.ReadByte()) != token.SetBegin {
		return nil
	}

	var refs []uint32
	depth := 1
	for depth > 0 {
		kind := token.Kind(l.tp.ReadByte())
		switch kind {
		case token.Ref:
			refs = append(refs, l.tp.ReadUint32())
		case token.String, token.Enum:
			l.tp.ReadUint32()
			l.tp.ReadUint32()
		case token.Real:
			l.tp.ReadFloat64()
		case token.SetBegin:
			depth++
		case token.SetEnd:
			depth--
		case token.LineEnd:
			depth = 0 // tolerate a truncated argument list rather than run off the tape
		}
	}
	return refs
}

// GetAllRefs performs a breadth-first walk of the reference graph starting
// at lineID, following every REF found by GetRefs, and returns the
// express-ids visited (in BFS order, lineID's own refs first). An explicit
// visited set guards against cycles, which spec.md §9 notes are possible in
// malformed (non-DAG) input.
func (l *Loader) GetAllRefs(lineID uint32) []uint32 {
	visited := map[uint32]bool{lineID: true}
	queue := []uint32{lineID}
	var order []uint32

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ref := range l.GetRefs(cur) {
			refLine := l.ExpressIDToLineID(ref)
			if visited[refLine] {
				continue
			}
			visited[refLine] = true
			order = append(order, ref)
			queue = append(queue, refLine)
		}
	}
	return order
}
