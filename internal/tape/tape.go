// Package tape implements a chunked, append-only byte arena with typed
// push/read primitives and two cursors: a monotonic write cursor and a
// freely-seekable read cursor.
//
// Chunks are allocated in fixed-size blocks and never reallocated or moved,
// so a position handed out by WriteOffset stays valid for the tape's whole
// lifetime.
package tape

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ChunkSize is the reference chunk size (1 MiB).
const ChunkSize = 1 << 20

// Tape is a chunked append-only byte arena. The zero value is not usable;
// construct one with New.
type Tape struct {
	chunks   [][]byte
	writePos uint32
	readPos  uint32
}

// New returns an empty Tape.
func New() *Tape {
	return &Tape{chunks: [][]byte{make([]byte, ChunkSize)}}
}

func (t *Tape) chunkFor(pos uint32) (chunkIdx int, offset int) {
	return int(pos / ChunkSize), int(pos % ChunkSize)
}

func (t *Tape) growForWrite(n int) {
	needed := int(t.writePos) + n
	for needed > len(t.chunks)*ChunkSize {
		t.chunks = append(t.chunks, make([]byte, ChunkSize))
	}
}

// PushByte appends a single byte and returns the offset it was written at.
func (t *Tape) PushByte(b byte) uint32 {
	pos := t.writePos
	t.growForWrite(1)
	ci, off := t.chunkFor(pos)
	t.chunks[ci][off] = b
	t.writePos++
	return pos
}

// PushBytes appends raw bytes, spanning chunk boundaries transparently.
func (t *Tape) PushBytes(b []byte) uint32 {
	pos := t.writePos
	t.growForWrite(len(b))
	remaining := b
	cur := pos
	for len(remaining) > 0 {
		ci, off := t.chunkFor(cur)
		n := copy(t.chunks[ci][off:], remaining)
		remaining = remaining[n:]
		cur += uint32(n)
	}
	t.writePos = cur
	return pos
}

// PushUint32 appends a little-endian uint32.
func (t *Tape) PushUint32(v uint32) uint32 {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return t.PushBytes(buf[:])
}

// PushFloat64 appends a little-endian IEEE-754 double.
func (t *Tape) PushFloat64(v float64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return t.PushBytes(buf[:])
}

// WriteOffset returns the current write cursor.
func (t *Tape) WriteOffset() uint32 { return t.writePos }

// MoveTo sets the read cursor. Panics if offset exceeds the write cursor.
func (t *Tape) MoveTo(offset uint32) {
	if offset > t.writePos {
		panic(fmt.Sprintf("tape: MoveTo(%d) past write cursor %d", offset, t.writePos))
	}
	t.readPos = offset
}

// ReadPos returns the current read cursor.
func (t *Tape) ReadPos() uint32 { return t.readPos }

// AtEnd reports whether the read cursor has reached the write cursor.
func (t *Tape) AtEnd() bool { return t.readPos == t.writePos }

func (t *Tape) readBytes(n int) []byte {
	if int(t.readPos)+n > int(t.writePos) {
		panic(fmt.Sprintf("tape: read of %d bytes at %d past write cursor %d", n, t.readPos, t.writePos))
	}
	out := make([]byte, n)
	remaining := out
	cur := t.readPos
	for len(remaining) > 0 {
		ci, off := t.chunkFor(cur)
		n := copy(remaining, t.chunks[ci][off:])
		remaining = remaining[n:]
		cur += uint32(n)
	}
	t.readPos = cur
	return out
}

// ReadByte reads and advances one byte.
func (t *Tape) ReadByte() byte {
	return t.readBytes(1)[0]
}

// ReadUint32 reads a little-endian uint32 and advances.
func (t *Tape) ReadUint32() uint32 {
	return binary.LittleEndian.Uint32(t.readBytes(4))
}

// ReadFloat64 reads a little-endian IEEE-754 double and advances.
func (t *Tape) ReadFloat64() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(t.readBytes(8)))
}

// Copy copies the contiguous byte range [start, end) into a freshly
// allocated slice. start/end must satisfy start <= end <= WriteOffset().
func (t *Tape) Copy(start, end uint32) []byte {
	if start > end || end > t.writePos {
		panic(fmt.Sprintf("tape: Copy(%d, %d) out of range [0, %d]", start, end, t.writePos))
	}
	out := make([]byte, 0, end-start)
	cur := start
	for cur < end {
		ci, off := t.chunkFor(cur)
		chunkEnd := off + int(end-cur)
		if chunkEnd > ChunkSize {
			chunkEnd = ChunkSize
		}
		out = append(out, t.chunks[ci][off:chunkEnd]...)
		cur += uint32(chunkEnd - off)
	}
	return out
}

// Reverse finalizes writing and rewinds the read cursor to the start. It may
// be called repeatedly (e.g. to restart a second pass).
func (t *Tape) Reverse() {
	t.readPos = 0
}
