package runtimeabi

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// BuildEnvModule registers every host-function-shaped HostRuntime method
// wasmgen emits imports for (emit.go's registerImports list) onto an "env"
// host module builder, ready for Instantiate. host's Heap must already be
// wrapped around the eventual instance's own memory — callers build this
// in two steps (instantiate with no memory-dependent imports resolved yet
// is not how wasm works, so in practice: build HostRuntime against a
// throwaway byteMemory first only to register imports, then once the real
// module is instantiated swap host.Heap's Memory for the instance's own
// via BindMemory).
func BuildEnvModule(ctx context.Context, rt wazero.Runtime, host *HostRuntime) wazero.HostModuleBuilder {
	b := rt.NewHostModuleBuilder("env")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, numSlots int32) {
		host.GCEnterFn(numSlots)
	}).Export("gc_enter_fn")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context) {
		host.GCExitFn()
	}).Export("gc_exit_fn")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr uint32, slot int32) {
		host.SetInCurrentShadowFrameSlot(ptr, slot)
	}).Export("set_in_current_shadow_frame_slot")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, any uint64, slot int32) {
		host.SetAnyInCurrentShadowFrameSlot(any, slot)
	}).Export("set_any_in_current_shadow_frame_slot")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, v float64) uint32 {
		return host.FloatBoxNew(v)
	}).Export("float_box_new")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr uint32) float64 {
		return host.FloatBoxRead(ptr)
	}).Export("float_box_read")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, n uint32) uint32 {
		return host.Alloc(n)
	}).Export("alloc")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr, nameOff, cacheSlot uint32) uint64 {
		return host.ObjectGetCached(ptr, nameOff, cacheSlot)
	}).Export("object_get_cached")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr, index uint32) uint64 {
		return host.ArrayGet(ptr, index)
	}).Export("array_get")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, any uint64) {
		host.Print(any)
	}).Export("print")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, length uint32) uint32 {
		return host.ArrayNew(length)
	}).Export("array_new")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr, index uint32, v uint64) {
		host.ArraySet(ptr, index, v)
	}).Export("array_set")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr uint32, v uint64) uint32 {
		return host.ArrayPush(ptr, v)
	}).Export("array_push")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr uint32) uint32 {
		return host.ArrayLen(ptr)
	}).Export("array_len")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr uint32) uint32 {
		return host.StringLen(ptr)
	}).Export("string_len")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context) uint32 {
		return host.ObjectNew()
	}).Export("object_new")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr, nameOff uint32, v uint64) uint64 {
		return host.ObjectSet(ptr, nameOff, v)
	}).Export("object_set")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, fnIndex, envLen uint32) uint32 {
		return host.ClosureNew(fnIndex, envLen)
	}).Export("closure_new")

	b.NewFunctionBuilder().WithFunc(func(ctx context.Context, ptr uint32, v uint64, index uint32) {
		host.ClosureSetCapture(ptr, v, index)
	}).Export("closure_set_capture")

	return b
}

// BindMemory points host.Heap at mod's actual exported linear memory,
// called immediately after Instantiate succeeds (the module's own memory
// doesn't exist until instantiation, so HostRuntime is necessarily built
// against a placeholder byteMemory beforehand and rebound here).
func BindMemory(host *HostRuntime, mod api.Module) {
	host.Heap.mem = NewWazeroMemory(mod.ExportedMemory("memory"))
}
