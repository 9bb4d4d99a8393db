package wasmgen

// Opcode is a subset of the Core WebAssembly instruction encoding (§5.4)
// sufficient for §4.6's lowering rules: integer/float arithmetic, locals,
// globals, memory, control flow, and calls.
type Opcode byte

const (
	OpUnreachable Opcode = 0x00
	OpNop         Opcode = 0x01
	OpBlock       Opcode = 0x02
	OpLoop        Opcode = 0x03
	OpIf          Opcode = 0x04
	OpElse        Opcode = 0x05
	OpEnd         Opcode = 0x0B
	OpBr          Opcode = 0x0C
	OpBrIf        Opcode = 0x0D
	OpBrTable     Opcode = 0x0E
	OpReturn      Opcode = 0x0F
	OpCall        Opcode = 0x10
	OpCallIndirect Opcode = 0x11
	OpDrop        Opcode = 0x1A
	OpSelect      Opcode = 0x1B

	OpLocalGet  Opcode = 0x20
	OpLocalSet  Opcode = 0x21
	OpLocalTee  Opcode = 0x22
	OpGlobalGet Opcode = 0x23
	OpGlobalSet Opcode = 0x24

	OpI32Load  Opcode = 0x28
	OpI64Load  Opcode = 0x29
	OpF64Load  Opcode = 0x2B
	OpI32Load8U Opcode = 0x2D
	OpI32Store Opcode = 0x36
	OpI64Store Opcode = 0x37
	OpF64Store Opcode = 0x39
	OpI32Store8 Opcode = 0x3A

	OpMemorySize Opcode = 0x3F
	OpMemoryGrow Opcode = 0x40

	OpI32Const Opcode = 0x41
	OpI64Const Opcode = 0x42
	OpF64Const Opcode = 0x44

	OpI32Eqz Opcode = 0x45
	OpI32Eq  Opcode = 0x46
	OpI32Ne  Opcode = 0x47
	OpI32LtS Opcode = 0x48
	OpI32GtS Opcode = 0x4A
	OpI32LeS Opcode = 0x4C
	OpI32GeS Opcode = 0x4E

	OpI64Eq  Opcode = 0x51
	OpF64Eq  Opcode = 0x61
	OpF64Lt  Opcode = 0x63
	OpF64Gt  Opcode = 0x64
	OpF64Le  Opcode = 0x65
	OpF64Ge  Opcode = 0x66

	OpI32Add Opcode = 0x6A
	OpI32Sub Opcode = 0x6B
	OpI32Mul Opcode = 0x6C
	OpI32DivS Opcode = 0x6D
	OpI32And Opcode = 0x71
	OpI32Or  Opcode = 0x72
	OpI32Xor Opcode = 0x73
	OpI32Shl Opcode = 0x74
	OpI32ShrS Opcode = 0x75

	OpI64Add  Opcode = 0x7C
	OpI64Sub  Opcode = 0x7D
	OpI64And  Opcode = 0x83
	OpI64Or   Opcode = 0x84
	OpI64Shl  Opcode = 0x86
	OpI64ShrU Opcode = 0x88

	OpF64Add Opcode = 0xA0
	OpF64Sub Opcode = 0xA1
	OpF64Mul Opcode = 0xA2
	OpF64Div Opcode = 0xA3

	OpI32WrapI64    Opcode = 0xA7
	OpI32TruncF64S  Opcode = 0xAA
	OpI64ExtendI32S Opcode = 0xAC
	OpI64ExtendI32U Opcode = 0xAD
	OpF64ConvertI32S Opcode = 0xB7
	OpI64ReinterpretF64 Opcode = 0xBD
	OpF64ReinterpretI64 Opcode = 0xBF

	// BlockTypeEmpty marks a block/loop/if with no result type (0x40 is the
	// "empty" special-cased block type byte, not a valtype).
	BlockTypeEmpty byte = 0x40
)
