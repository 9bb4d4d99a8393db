package runtimeabi

// ValKind is a wasm value type as seen from the runtime side of the ABI —
// defined independently of internal/wasmgen.ValType for the same
// wire-boundary reason as AnyTag (tag.go).
type ValKind byte

const (
	KindI32 ValKind = iota
	KindI64
	KindF64
)

// Signature is one runtime import's declared shape (§6.2: "arg list in
// source order, then return").
type Signature struct {
	Args   []ValKind
	Result []ValKind // empty for a void import
}

// ImportSignatures is the authoritative §6.2 table, spelled out in full
// (the spec.md table is explicitly "non-exhaustive" but names every
// concern this subset's front end exercises). internal/wasmgen's own
// import set (emit.go's importSignature) is a smaller, differently-named
// subset of this table — e.g. array_get/array_set instead of
// array_index/array_set, one object_get_cached instead of separate
// object_get + a bare cache-slot argument folded in — a simplification,
// not an inconsistency: this
// table is what a from-scratch runtime exposes per spec.md; §6.2 itself
// says "the emitter must tolerate the runtime adding functions" and vice
// versa, so the two tables are not required to match 1:1.
var ImportSignatures = map[string]Signature{
	"ht_new":     {Result: []ValKind{KindI32}},
	"ht_get":     {Args: []ValKind{KindI32, KindI32}, Result: []ValKind{KindI64}},
	"ht_set":     {Args: []ValKind{KindI32, KindI32, KindI64}, Result: []ValKind{KindI64}},
	"array_new":  {Result: []ValKind{KindI32}},
	"array_push": {Args: []ValKind{KindI32, KindI64}, Result: []ValKind{KindI32}},
	"array_index": {Args: []ValKind{KindI32, KindI32}, Result: []ValKind{KindI64}},
	"array_set":  {Args: []ValKind{KindI32, KindI32, KindI64}, Result: []ValKind{KindI64}},
	"array_len":  {Args: []ValKind{KindI32}, Result: []ValKind{KindI32}},

	"any_from_i32":     {Args: []ValKind{KindI32}, Result: []ValKind{KindI64}},
	"any_from_bool":    {Args: []ValKind{KindI32}, Result: []ValKind{KindI64}},
	"any_from_f64":     {Args: []ValKind{KindF64}, Result: []ValKind{KindI64}},
	"any_from_fn":      {Args: []ValKind{KindI32}, Result: []ValKind{KindI64}},
	"any_from_closure": {Args: []ValKind{KindI32}, Result: []ValKind{KindI64}},
	"any_from_ptr":     {Args: []ValKind{KindI32}, Result: []ValKind{KindI64}},
	"any_to_i32":       {Args: []ValKind{KindI64}, Result: []ValKind{KindI32}},
	"any_to_bool":      {Args: []ValKind{KindI64}, Result: []ValKind{KindI32}},
	"any_to_f64":       {Args: []ValKind{KindI64}, Result: []ValKind{KindF64}},
	"any_to_closure":   {Args: []ValKind{KindI64}, Result: []ValKind{KindI32}},
	"any_to_ptr":       {Args: []ValKind{KindI64}, Result: []ValKind{KindI32}},

	"object_empty": {Result: []ValKind{KindI32}},
	"object_set":   {Args: []ValKind{KindI32, KindI32, KindI64, KindI32}, Result: []ValKind{KindI64}},
	"object_get":   {Args: []ValKind{KindI32, KindI32, KindI32}, Result: []ValKind{KindI64}},

	"string_len": {Args: []ValKind{KindI32}, Result: []ValKind{KindI32}},

	"ref_new_non_ptr_32": {Args: []ValKind{KindI32}, Result: []ValKind{KindI32}},
	"ref_new_f64":        {Args: []ValKind{KindF64}, Result: []ValKind{KindI32}},
	"ref_new_any":        {Args: []ValKind{KindI64}, Result: []ValKind{KindI32}},
	"ref_new_ptr":        {Args: []ValKind{KindI32}, Result: []ValKind{KindI32}},

	"gc_enter_fn": {Args: []ValKind{KindI32}},
	"gc_exit_fn":  {},
	"set_in_current_shadow_frame_slot":     {Args: []ValKind{KindI32, KindI32}},
	"set_any_in_current_shadow_frame_slot": {Args: []ValKind{KindI64, KindI32}},

	"closure_env":  {Args: []ValKind{KindI32}, Result: []ValKind{KindI32}},
	"closure_func": {Args: []ValKind{KindI32}, Result: []ValKind{KindI32}},
	"closure_new":  {Args: []ValKind{KindI32, KindI32}, Result: []ValKind{KindI32}},

	"env_alloc":    {Args: []ValKind{KindI32}, Result: []ValKind{KindI32}},
	"env_init_at":  {Args: []ValKind{KindI32, KindI32, KindI64}, Result: []ValKind{KindI32}},

	"get_undefined": {Result: []ValKind{KindI64}},
	"get_null":      {Result: []ValKind{KindI64}},

	"init":             {},
	"jnks_init":        {},
	"jnks_new_object":  {Result: []ValKind{KindI32}},
	"jnks_new_fn_obj":  {Result: []ValKind{KindI32}},
}
