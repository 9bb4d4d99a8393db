package runtimeabi

import (
	"math"

	"github.com/tetratelabs/wazero/api"

	"github.com/funvibe/jankgo/internal/diag"
)

// wazeroMemory adapts a running wasm instance's linear memory (api.Memory)
// to the Memory interface, so HostRuntime can drive the real memory a
// compiled module executes against instead of byteMemory's standalone
// buffer. Used by cmd/jankgo when it instantiates an emitted module
// (internal/wasmgen's output) under wazero; internal/wasmgen's own test
// suite uses plain host-function stubs instead (it only checks emission,
// not GC/heap behavior).
type wazeroMemory struct {
	mem api.Memory
}

// NewWazeroMemory wraps a live module's exported "memory".
func NewWazeroMemory(mem api.Memory) Memory {
	return &wazeroMemory{mem: mem}
}

func (w *wazeroMemory) Size() uint32 { return w.mem.Size() }

func (w *wazeroMemory) Grow(deltaBytes uint32) bool {
	pages := (deltaBytes + 65535) / 65536
	_, ok := w.mem.Grow(pages)
	return ok
}

func (w *wazeroMemory) ReadByte(offset uint32) byte {
	v, ok := w.mem.ReadByte(offset)
	if !ok {
		diag.Bug("runtimeabi: wazero memory read out of range at %d", offset)
	}
	return v
}

func (w *wazeroMemory) WriteByte(offset uint32, v byte) {
	if !w.mem.WriteByte(offset, v) {
		diag.Bug("runtimeabi: wazero memory write out of range at %d", offset)
	}
}

func (w *wazeroMemory) ReadUint32(offset uint32) uint32 {
	v, ok := w.mem.ReadUint32Le(offset)
	if !ok {
		diag.Bug("runtimeabi: wazero memory read out of range at %d", offset)
	}
	return v
}

func (w *wazeroMemory) WriteUint32(offset uint32, v uint32) {
	if !w.mem.WriteUint32Le(offset, v) {
		diag.Bug("runtimeabi: wazero memory write out of range at %d", offset)
	}
}

func (w *wazeroMemory) ReadUint64(offset uint32) uint64 {
	v, ok := w.mem.ReadUint64Le(offset)
	if !ok {
		diag.Bug("runtimeabi: wazero memory read out of range at %d", offset)
	}
	return v
}

func (w *wazeroMemory) WriteUint64(offset uint32, v uint64) {
	if !w.mem.WriteUint64Le(offset, v) {
		diag.Bug("runtimeabi: wazero memory write out of range at %d", offset)
	}
}

func (w *wazeroMemory) ReadFloat64(offset uint32) float64 {
	return math.Float64frombits(w.ReadUint64(offset))
}

func (w *wazeroMemory) WriteFloat64(offset uint32, v float64) {
	w.WriteUint64(offset, math.Float64bits(v))
}
