// Package runtimeabi implements the runtime side of the contract spec.md
// §4.7/§6.2 describes only through its interface: the heap, free list,
// hidden-class table, and shadow stack the compiled module's imports call
// into, plus the §6.2 import-signature table the wasm emitter's own import
// declarations are reconciled against.
//
// The heap is modeled against an abstract Memory rather than a bare []byte
// so the same allocator/GC logic serves two collaborators: Go-only unit
// tests (byteMemory) and a real wasm instance's linear memory, once
// cmd/jankgo wires one up via the wazero adapter in wazero_memory.go. §3.5
// never mandates the heap live inside the wasm instance itself, only that
// it behave like one contiguous aligned byte buffer — this keeps that
// choice open rather than baking wazero into every allocator call site.
package runtimeabi

import (
	"math"

	"github.com/funvibe/jankgo/internal/diag"
)

// Memory is the byte-addressable buffer the heap allocates out of. All
// offsets are little-endian, matching wasm's native byte order (§4.6.1).
type Memory interface {
	Size() uint32
	Grow(deltaBytes uint32) bool

	ReadByte(off uint32) byte
	WriteByte(off uint32, v byte)
	ReadUint32(off uint32) uint32
	WriteUint32(off uint32, v uint32)
	ReadUint64(off uint32) uint64
	WriteUint64(off uint32, v uint64)
	ReadFloat64(off uint32) float64
	WriteFloat64(off uint32, v float64)
}

// byteMemory is a plain Go-owned buffer, the Memory used by every test in
// this package and by any host-only embedding of the runtime (no wasm
// instance involved at all).
type byteMemory struct {
	buf []byte
}

// NewByteMemory allocates a Memory of the given initial size in bytes.
func NewByteMemory(initialSize uint32) Memory {
	return &byteMemory{buf: make([]byte, initialSize)}
}

func (m *byteMemory) Size() uint32 { return uint32(len(m.buf)) }

func (m *byteMemory) Grow(deltaBytes uint32) bool {
	m.buf = append(m.buf, make([]byte, deltaBytes)...)
	return true
}

func (m *byteMemory) bounds(off uint32, width uint32) {
	if uint64(off)+uint64(width) > uint64(len(m.buf)) {
		diag.Bug("runtimeabi: memory access [%d, %d) out of bounds (size %d)", off, off+width, len(m.buf))
	}
}

func (m *byteMemory) ReadByte(off uint32) byte { m.bounds(off, 1); return m.buf[off] }
func (m *byteMemory) WriteByte(off uint32, v byte) { m.bounds(off, 1); m.buf[off] = v }

func (m *byteMemory) ReadUint32(off uint32) uint32 {
	m.bounds(off, 4)
	b := m.buf[off : off+4]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (m *byteMemory) WriteUint32(off uint32, v uint32) {
	m.bounds(off, 4)
	b := m.buf[off : off+4]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func (m *byteMemory) ReadUint64(off uint32) uint64 {
	m.bounds(off, 8)
	lo := uint64(m.ReadUint32(off))
	hi := uint64(m.ReadUint32(off + 4))
	return lo | hi<<32
}

func (m *byteMemory) WriteUint64(off uint32, v uint64) {
	m.bounds(off, 8)
	m.WriteUint32(off, uint32(v))
	m.WriteUint32(off+4, uint32(v>>32))
}

func (m *byteMemory) ReadFloat64(off uint32) float64 {
	return math.Float64frombits(m.ReadUint64(off))
}

func (m *byteMemory) WriteFloat64(off uint32, v float64) {
	m.WriteUint64(off, math.Float64bits(v))
}
