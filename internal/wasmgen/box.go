package wasmgen

// Boxing (§4.6.1): Any is an i64 with the tag in the low byte and the
// payload in the remaining 56 bits. Int/Bool/Ptr/Closure/Undefined/Null all
// fit their payload inline (a 32-bit value or heap offset comfortably fits
// in 56 bits). Float is the one exception: a full f64 payload needs all 64
// bits, which collides with the low tag byte, so a boxed float is
// represented as a heap pointer to an 8-byte cell holding the raw bits, with
// Tag == TagF64 marking the payload as "pointer to a float cell" rather
// than "value inline" — a deliberate simplification over a NaN-boxing
// scheme, flagged in DESIGN.md, and consistent with every other tag's
// pointer-sized payload.

// emitBoxI32 expects an i32 on the stack and pushes the boxed i64 Any.
func (fe *funcEmitter) emitBoxI32(tag Tag, signed bool) {
	if signed {
		fe.push(OpI64ExtendI32S)
	} else {
		fe.push(OpI64ExtendI32U)
	}
	fe.pushConstI64(8)
	fe.push(OpI64Shl)
	fe.pushConstI64(int64(tag))
	fe.push(OpI64Or)
}

// emitBoxPtr expects an i32 heap pointer on the stack and pushes the boxed
// i64 Any with the given tag (Ptr or Closure).
func (fe *funcEmitter) emitBoxPtr(tag Tag) {
	fe.emitBoxI32(tag, false)
}

// emitBoxF64 expects an f64 on the stack; it allocates an 8-byte heap cell
// via the runtime's float-box allocator import, stores the bits there, and
// pushes the boxed i64 Any (tag TagF64, payload = cell pointer).
func (fe *funcEmitter) emitBoxF64() {
	fe.push(OpCall)
	fe.pushU32(fe.e.mustImport("float_box_new"))
	fe.emitBoxI32(TagF64, false)
}

// emitBoxConstant pushes a boxed Any for Undefined/Null (no runtime value
// to carry, payload is always zero).
func (fe *funcEmitter) emitBoxConstant(tag Tag) {
	fe.pushConstI64(int64(tag))
}

// emitUnboxI32 expects a boxed i64 Any on the stack and pushes the unboxed
// i32 (a logical shift right by 8 then i32.wrap keeps the low 32 payload
// bits, which is the Int's two's-complement value; Bool needs only bit 0).
func (fe *funcEmitter) emitUnboxI32() {
	fe.pushConstI64(8)
	fe.push(OpI64ShrU)
	fe.push(OpI32WrapI64)
}

// emitUnboxF64 expects a boxed i64 Any on the stack and pushes the unboxed
// f64, by recovering the float cell pointer and reading through it.
func (fe *funcEmitter) emitUnboxF64() {
	fe.emitUnboxI32()
	fe.push(OpCall)
	fe.pushU32(fe.e.mustImport("float_box_read"))
}
