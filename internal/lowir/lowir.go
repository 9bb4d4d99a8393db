// Package lowir defines LowIR (§3.3, §3.4): the three syntactic categories
// — Atom, Expr, Stmt — the A-normalizer (internal/anf) produces, and the
// Program container the wasm emitter (internal/wasmgen) consumes. The
// Atom/Expr/Stmt split is load-bearing (§9 Design Notes): it encodes the
// ANF invariant that every call argument is a bare identifier directly in
// the type system, rather than as a runtime-checked property.
package lowir

import "github.com/funvibe/jankgo/internal/types"

// AtomKind discriminates the Atom variants of §3.3.
type AtomKind int

const (
	AkLitInt AtomKind = iota
	AkLitFloat
	AkLitBool
	AkLitString
	AkLitUndefined
	AkLitNull
	AkId
	AkBinary
	AkUnary
	AkToAny
	AkFromAny
	AkFloatToInt
	AkIntToFloat
	AkEnvGet
	AkDeref
	AkObjectGet
	AkArrayGet
	AkAnyLength
	AkPrimApp
	AkGetPrimFunc
)

// Atom is a side-effect-free, duplicable value (§3.3).
type Atom struct {
	Kind AtomKind
	Ty   types.Type

	IntVal    int64
	FloatVal  float64
	BoolVal   bool
	StringVal string

	// Id, Deref, ObjectGet base and AnyLength reference an identifier
	// (EnvGet uses EnvIndex; PrimApp and GetPrimFunc use PrimName).
	Id string

	Op       string // Binary/Unary operator token
	Lhs, Rhs *Atom
	Operand  *Atom

	// EnvGet.
	EnvIndex int

	// ObjectGet: field name atom (already an Atom per §3.3, typically a
	// string literal or identifier holding one).
	Field *Atom

	// ArrayGet: element index atom.
	Index *Atom

	// AnyLength: method_lit names which builtin ("length").
	MethodLit string

	// PrimApp/PrimCall shared arg-id list; GetPrimFunc names the primitive.
	PrimName string
	Args     []string
}

func LitInt(v int64) Atom    { return Atom{Kind: AkLitInt, IntVal: v, Ty: types.Int()} }
func LitFloat(v float64) Atom { return Atom{Kind: AkLitFloat, FloatVal: v, Ty: types.Float()} }
func LitBool(v bool) Atom    { return Atom{Kind: AkLitBool, BoolVal: v, Ty: types.Bool()} }
func LitString(v string) Atom { return Atom{Kind: AkLitString, StringVal: v, Ty: types.String()} }
func LitUndefined() Atom     { return Atom{Kind: AkLitUndefined, Ty: types.Any()} }
func LitNull() Atom          { return Atom{Kind: AkLitNull, Ty: types.Any()} }

func Id(name string, ty types.Type) Atom { return Atom{Kind: AkId, Id: name, Ty: ty} }

func Binary(op string, lhs, rhs Atom, ty types.Type) Atom {
	return Atom{Kind: AkBinary, Op: op, Lhs: &lhs, Rhs: &rhs, Ty: ty}
}

func Unary(op string, operand Atom, ty types.Type) Atom {
	return Atom{Kind: AkUnary, Op: op, Operand: &operand, Ty: ty}
}

func ToAny(operand Atom) Atom {
	return Atom{Kind: AkToAny, Operand: &operand, Ty: types.Any()}
}

func FromAny(operand Atom, ty types.Type) Atom {
	return Atom{Kind: AkFromAny, Operand: &operand, Ty: ty}
}

func FloatToInt(operand Atom) Atom {
	return Atom{Kind: AkFloatToInt, Operand: &operand, Ty: types.Int()}
}

func IntToFloat(operand Atom) Atom {
	return Atom{Kind: AkIntToFloat, Operand: &operand, Ty: types.Float()}
}

func EnvGet(index int, ty types.Type) Atom {
	return Atom{Kind: AkEnvGet, EnvIndex: index, Ty: ty}
}

func Deref(id string, ty types.Type) Atom {
	return Atom{Kind: AkDeref, Id: id, Ty: ty}
}

func ObjectGet(objID string, field Atom) Atom {
	return Atom{Kind: AkObjectGet, Id: objID, Field: &field, Ty: types.Any()}
}

// ArrayGet reads element `index` of array_id. Arrays are homogeneous Any
// storage (§4.6.2), so the result atom is always Any; inference inserts the
// Untag the call site needs.
func ArrayGet(arrayID string, index Atom) Atom {
	return Atom{Kind: AkArrayGet, Id: arrayID, Index: &index, Ty: types.Any()}
}

func AnyLength(id string, methodLit string) Atom {
	return Atom{Kind: AkAnyLength, Id: id, MethodLit: methodLit, Ty: types.Int()}
}

func PrimApp(name string, args []string, ty types.Type) Atom {
	return Atom{Kind: AkPrimApp, PrimName: name, Args: args, Ty: ty}
}

func GetPrimFunc(name string, ty types.Type) Atom {
	return Atom{Kind: AkGetPrimFunc, PrimName: name, Ty: ty}
}

// ExprKind discriminates the Expr variants of §3.3.
type ExprKind int

const (
	EkAtom ExprKind = iota
	EkArraySet
	EkArrayNew
	EkObjectSet
	EkObjectEmpty
	EkPrimCall
	EkCall
	EkClosureCall
	EkAnyMethodCall
	EkNewRef
	EkClosureAlloc
)

// EnvEntry pairs a captured identifier with its type for a Closure
// allocation (§3.3 Closure(fun_id, env: seq<(id, ty)>)).
type EnvEntry struct {
	Id string
	Ty types.Type
}

// Expr may allocate or call (§3.3).
type Expr struct {
	Kind ExprKind
	Ty   types.Type

	Atom *Atom

	// ArraySet(array_id, index_atom, value_atom), ObjectSet(obj_id,
	// field_atom, value_atom).
	BaseId string
	Index  *Atom
	Field  *Atom
	Value  *Atom

	// PrimCall/Call/ClosureCall: callee + identifier args (ANF invariant:
	// every argument is a bound identifier, never an arbitrary atom).
	FunId string
	Args  []string

	// AnyMethodCall.
	AnyId        string
	MethodLit    string
	PossibleTys  []types.Type

	// NewRef.
	RefInit *Atom

	// Closure allocation.
	ClosureFn  string
	ClosureEnv []EnvEntry
}

func AtomExpr(a Atom) Expr { return Expr{Kind: EkAtom, Atom: &a, Ty: a.Ty} }

func ArraySet(arrayID string, index, value Atom) Expr {
	return Expr{Kind: EkArraySet, BaseId: arrayID, Index: &index, Value: &value, Ty: types.Any()}
}

// ArrayNew allocates a fresh array of the given length, every slot
// initialized to the Any undefined value (§4.6.2).
func ArrayNew(length Atom) Expr {
	return Expr{Kind: EkArrayNew, Index: &length, Ty: types.Array()}
}

func ObjectSet(objID string, field, value Atom) Expr {
	return Expr{Kind: EkObjectSet, BaseId: objID, Field: &field, Value: &value, Ty: types.Any()}
}

func ObjectEmpty() Expr { return Expr{Kind: EkObjectEmpty, Ty: types.DynObject()} }

func PrimCall(name string, args []string, ty types.Type) Expr {
	return Expr{Kind: EkPrimCall, FunId: name, Args: args, Ty: ty}
}

func Call(funID string, args []string, ty types.Type) Expr {
	return Expr{Kind: EkCall, FunId: funID, Args: args, Ty: ty}
}

func ClosureCall(funID string, args []string, ty types.Type) Expr {
	return Expr{Kind: EkClosureCall, FunId: funID, Args: args, Ty: ty}
}

func AnyMethodCall(anyID, methodLit string, args []string, possible []types.Type) Expr {
	return Expr{Kind: EkAnyMethodCall, AnyId: anyID, MethodLit: methodLit, Args: args, PossibleTys: possible, Ty: types.Any()}
}

func NewRef(init Atom, ty types.Type) Expr {
	return Expr{Kind: EkNewRef, RefInit: &init, Ty: types.Ref(ty)}
}

func ClosureAlloc(fn string, env []EnvEntry, ty types.Type) Expr {
	return Expr{Kind: EkClosureAlloc, ClosureFn: fn, ClosureEnv: env, Ty: ty}
}

// StmtKind discriminates the Stmt variants of §3.3.
type StmtKind int

const (
	SkVar StmtKind = iota
	SkAssign
	SkStore
	SkExpression
	SkIf
	SkLoop
	SkLabel
	SkBreak
	SkReturn
	SkBlock
	SkEmpty
	SkTrap
)

// Stmt is the LowIR statement node (§3.3).
type Stmt struct {
	Kind StmtKind

	// Var(id, ty?, expr).
	Id   string
	Ty   types.Type
	Expr *Expr

	// Assign(id, expr) / Store(id, expr) share Id/Expr above.

	// If.
	Cond       *Atom
	Then, Else *Stmt

	// Loop/Label: Body.
	Label string
	Body  *Stmt

	// Return.
	Value *Atom

	// Block.
	Stmts []*Stmt

	// Trap: a runtime-reachable invariant failure with a human-readable
	// reason (distinct from diag.Bug, which aborts the compiler itself; a
	// Trap aborts the *compiled program*, e.g. an out-of-bounds array
	// access).
	TrapReason string
}

func Var(id string, ty types.Type, expr *Expr) *Stmt {
	return &Stmt{Kind: SkVar, Id: id, Ty: ty, Expr: expr}
}

func Assign(id string, expr *Expr) *Stmt {
	return &Stmt{Kind: SkAssign, Id: id, Expr: expr}
}

func Store(id string, expr *Expr) *Stmt {
	return &Stmt{Kind: SkStore, Id: id, Expr: expr}
}

func Expression(expr *Expr) *Stmt {
	return &Stmt{Kind: SkExpression, Expr: expr}
}

func If(cond Atom, then, els *Stmt) *Stmt {
	return &Stmt{Kind: SkIf, Cond: &cond, Then: then, Else: els}
}

func Loop(body *Stmt) *Stmt { return &Stmt{Kind: SkLoop, Body: body} }

func LabelStmt(label string, body *Stmt) *Stmt {
	return &Stmt{Kind: SkLabel, Label: label, Body: body}
}

func Break(label string) *Stmt { return &Stmt{Kind: SkBreak, Label: label} }

func Return(value *Atom) *Stmt { return &Stmt{Kind: SkReturn, Value: value} }

func Block(stmts []*Stmt) *Stmt { return &Stmt{Kind: SkBlock, Stmts: stmts} }

func Empty() *Stmt { return &Stmt{Kind: SkEmpty} }

func Trap(reason string) *Stmt { return &Stmt{Kind: SkTrap, TrapReason: reason} }

// Param is one formal parameter of a Function.
type Param struct {
	Id string
	Ty types.Type
}

// Function is one entry of Program.Functions (§3.4).
type Function struct {
	Name   string
	Params []Param
	FnType types.Type
	Body   *Stmt
	// IsClosure marks a function whose first implicit parameter is the
	// captured Env (§3.1 Closure), so the emitter (§4.6.3) knows to prepend
	// it when building the function's wasm type.
	IsClosure bool
}

// DataSegment is the finalized string-intern table plus inline-cache slots
// (§3.4, §4.6.7, §6.4): bytes laid out in source order, with an index from
// interned string value to byte offset for lookups during lowering.
type DataSegment struct {
	Bytes       []byte
	StringAt    map[string]int
	CacheSlotAt []int
}

// Program is the A-normalizer's output and the wasm emitter's input (§3.4).
type Program struct {
	Functions map[string]*Function
	Globals   []Param
	Data      DataSegment
	// RtsFnImports lists runtime import signatures the emitter must
	// declare, keyed by name (§6.2). The emitter tolerates the runtime
	// adding functions beyond this set (§6.2 "unknown imports are injected
	// through a rts_fn_imports map").
	RtsFnImports map[string]types.Type
}

func NewProgram() *Program {
	return &Program{
		Functions:    map[string]*Function{},
		Data:         DataSegment{StringAt: map[string]int{}},
		RtsFnImports: map[string]types.Type{},
	}
}

// Intern adds s to the data segment if not already present (null-terminated
// UTF-8, §6.4) and returns its byte offset.
func (p *Program) Intern(s string) int {
	if off, ok := p.Data.StringAt[s]; ok {
		return off
	}
	off := len(p.Data.Bytes)
	p.Data.Bytes = append(p.Data.Bytes, []byte(s)...)
	p.Data.Bytes = append(p.Data.Bytes, 0)
	p.Data.StringAt[s] = off
	return off
}

// NewCacheSlot extends the data segment by four bytes initialized to
// 0xFFFFFFFF (§4.6.7, §6.4) and returns its byte offset.
func (p *Program) NewCacheSlot() int {
	off := len(p.Data.Bytes)
	p.Data.Bytes = append(p.Data.Bytes, 0xFF, 0xFF, 0xFF, 0xFF)
	p.Data.CacheSlotAt = append(p.Data.CacheSlotAt, off)
	return off
}
