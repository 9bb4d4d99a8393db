package wasmgen

import "fmt"

// emitBrTableDispatch emits the §4.6.6 nested-Block/BrTable shape: n case
// blocks plus a default block, all wrapped in one exit block, with a
// BrTable on the value pushSelector leaves on the stack choosing which
// block to fall into. arm(i) emits case i's body; defaultArm emits the
// body for any selector value outside [0,n) (wasm's br_table always needs
// a default target, even when the source domain is known exhaustive).
// Every arm body runs with control rejoining at the shared exit block
// afterward, so a value an arm writes to a scratch local is visible once
// the whole dispatch has finished.
func (fe *funcEmitter) emitBrTableDispatch(n int, pushSelector func() error, arm func(i int) error, defaultArm func() error) error {
	fe.switchCount++
	base := fmt.Sprintf("$switch%d", fe.switchCount)
	exitLabel := base + "_exit"
	defaultLabel := base + "_default"
	caseLabel := func(i int) string { return fmt.Sprintf("%s_case%d", base, i) }

	fe.push(OpBlock)
	fe.pushByte(BlockTypeEmpty)
	fe.frames = append(fe.frames, ctrlFrame{label: exitLabel, isBreakTarget: true})

	fe.push(OpBlock)
	fe.pushByte(BlockTypeEmpty)
	fe.frames = append(fe.frames, ctrlFrame{label: defaultLabel, isBreakTarget: true})

	for i := 0; i < n; i++ {
		fe.push(OpBlock)
		fe.pushByte(BlockTypeEmpty)
		fe.frames = append(fe.frames, ctrlFrame{label: caseLabel(i), isBreakTarget: true})
	}

	if err := pushSelector(); err != nil {
		return err
	}
	fe.push(OpBrTable)
	fe.pushU32(uint32(n))
	for i := 0; i < n; i++ {
		d, err := fe.breakDepth(caseLabel(i))
		if err != nil {
			return err
		}
		fe.pushU32(d)
	}
	dDefault, err := fe.breakDepth(defaultLabel)
	if err != nil {
		return err
	}
	fe.pushU32(dDefault)

	for i := n - 1; i >= 0; i-- {
		fe.push(OpEnd)
		fe.frames = fe.frames[:len(fe.frames)-1]
		if err := arm(i); err != nil {
			return err
		}
		d, err := fe.breakDepth(exitLabel)
		if err != nil {
			return err
		}
		fe.push(OpBr)
		fe.pushU32(d)
	}

	fe.push(OpEnd) // closes the default block
	fe.frames = fe.frames[:len(fe.frames)-1]
	if err := defaultArm(); err != nil {
		return err
	}

	fe.push(OpEnd) // closes the exit block
	fe.frames = fe.frames[:len(fe.frames)-1]
	return nil
}

// emitAnyDispatch decodes the Any boxed value sitting in recvIdx's local
// and dispatches on its discriminant tag via emitBrTableDispatch (§4.6.6):
// only the Ptr arm is reachable by anything this front end's inference
// narrows a method-call or length receiver to, so every other tag traps.
// ptrArm receives the already-unboxed heap pointer and a scratch local of
// resultTy it must leave the final (possibly still-to-be-boxed) value in;
// emitAnyDispatch itself pushes that scratch's value once the dispatch
// tree completes and returns its index for a caller that needs it for
// something else.
func (fe *funcEmitter) emitAnyDispatch(recvIdx uint32, resultTy ValType, ptrArm func(ptrScratch, resultScratch uint32) error) (uint32, error) {
	resultScratch := fe.reserveScratch(resultTy)

	err := fe.emitBrTableDispatch(int(TagNull)+1, func() error {
		fe.push(OpLocalGet)
		fe.pushU32(recvIdx)
		fe.pushConstI64(0xFF)
		fe.push(OpI64And)
		fe.push(OpI32WrapI64)
		return nil
	}, func(i int) error {
		if Tag(i) != TagPtr {
			fe.push(OpUnreachable)
			return nil
		}
		ptrScratch := fe.reserveScratch(ValI32)
		fe.push(OpLocalGet)
		fe.pushU32(recvIdx)
		fe.emitUnboxI32()
		fe.push(OpLocalSet)
		fe.pushU32(ptrScratch)
		return ptrArm(ptrScratch, resultScratch)
	}, func() error {
		fe.push(OpUnreachable)
		return nil
	})
	return resultScratch, err
}

// emitHeapTagOf loads the HeapTag byte at ptrScratch's header (offset 0)
// into a fresh scratch local and returns its index.
func (fe *funcEmitter) emitHeapTagOf(ptrScratch uint32) uint32 {
	fe.push(OpLocalGet)
	fe.pushU32(ptrScratch)
	fe.push(OpI32Load8U)
	fe.pushByte(0)
	fe.pushByte(0)
	heapTagScratch := fe.reserveScratch(ValI32)
	fe.push(OpLocalSet)
	fe.pushU32(heapTagScratch)
	return heapTagScratch
}
