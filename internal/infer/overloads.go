package infer

import "github.com/funvibe/jankgo/internal/types"

// Overload is one typed signature of a JsOp (§4.1: "for every overload
// (σ_args → σ_ret)").
type Overload struct {
	ArgTys []types.Type
	Result types.Type
}

// OpTable holds every overload for one operator, plus the any-typed
// fallback overload used when no ground overload applies (§4.1: "if the op
// has an any-overload, add ¬w ∧ Λ β_i=any ∧ α=σ_ret_any").
type OpTable struct {
	Overloads []Overload
	AnyResult types.Type
}

// Overloads is the JsOp table (§4.1, §9 "the LowIR Atom/Expr/Stmt split is
// load-bearing" — this table is the HighIR-side analogue: one entry per
// surface operator token, fully enumerated rather than dispatched
// dynamically).
var Overloads = map[string]OpTable{
	"+": {
		Overloads: []Overload{
			{ArgTys: []types.Type{types.Int(), types.Int()}, Result: types.Int()},
			{ArgTys: []types.Type{types.Float(), types.Float()}, Result: types.Float()},
			{ArgTys: []types.Type{types.String(), types.String()}, Result: types.String()},
		},
		AnyResult: types.Any(),
	},
	"-": numericOnly(),
	"*": numericOnly(),
	"/": numericOnly(),
	"<": comparison(),
	">": comparison(),
	"<=": comparison(),
	">=": comparison(),
	"==": equality(),
	"!=": equality(),
	"<<": bitwise(),
	">>": bitwise(),
	"&":  bitwise(),
	"|":  bitwise(),
	"^":  bitwise(),
}

func numericOnly() OpTable {
	return OpTable{
		Overloads: []Overload{
			{ArgTys: []types.Type{types.Int(), types.Int()}, Result: types.Int()},
			{ArgTys: []types.Type{types.Float(), types.Float()}, Result: types.Float()},
		},
		AnyResult: types.Any(),
	}
}

func comparison() OpTable {
	return OpTable{
		Overloads: []Overload{
			{ArgTys: []types.Type{types.Int(), types.Int()}, Result: types.Bool()},
			{ArgTys: []types.Type{types.Float(), types.Float()}, Result: types.Bool()},
			{ArgTys: []types.Type{types.String(), types.String()}, Result: types.Bool()},
		},
		AnyResult: types.Bool(),
	}
}

func equality() OpTable {
	return OpTable{
		Overloads: []Overload{
			{ArgTys: []types.Type{types.Int(), types.Int()}, Result: types.Bool()},
			{ArgTys: []types.Type{types.Float(), types.Float()}, Result: types.Bool()},
			{ArgTys: []types.Type{types.Bool(), types.Bool()}, Result: types.Bool()},
			{ArgTys: []types.Type{types.String(), types.String()}, Result: types.Bool()},
		},
		AnyResult: types.Bool(),
	}
}

func bitwise() OpTable {
	return OpTable{
		Overloads: []Overload{
			{ArgTys: []types.Type{types.Int(), types.Int()}, Result: types.Int()},
		},
		AnyResult: types.Any(),
	}
}

// UnaryOverloads is the unary-operator analogue of Overloads; unary JS
// operators in the §8 test subset (!, -, +) never gain an Any-typed result
// distinct from Int/Bool, so there is no any-overload entry required.
var UnaryOverloads = map[string]Overload{
	"!": {ArgTys: []types.Type{types.Bool()}, Result: types.Bool()},
	"-": {ArgTys: []types.Type{types.Int()}, Result: types.Int()},
	"+": {ArgTys: []types.Type{types.Int()}, Result: types.Int()},
}
