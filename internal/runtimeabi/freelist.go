package runtimeabi

// FreeList tracks reclaimed (start, size) byte ranges (§3.5) as a singly
// linked list of blocks, the same shape as the reference runtime's
// FreeNode{obj, next} free list (other_examples' gavlooth-purple_go
// pkg/codegen/runtime.go FREE_HEAD chain) adapted from per-object nodes to
// byte-range nodes, since this heap reclaims raw extents rather than
// individually boxed objects.
type freeBlock struct {
	start, size uint32
	next        *freeBlock
}

type FreeList struct {
	head *freeBlock
}

// Alloc finds the first block large enough for size bytes (first-fit),
// splitting off any remainder back into the list. Returns (0, false) if no
// block is large enough.
func (fl *FreeList) Alloc(size uint32) (uint32, bool) {
	var prev *freeBlock
	for b := fl.head; b != nil; b = b.next {
		if b.size < size {
			prev = b
			continue
		}
		start := b.start
		if b.size == size {
			fl.unlink(prev, b)
		} else {
			b.start += size
			b.size -= size
		}
		return start, true
	}
	return 0, false
}

func (fl *FreeList) unlink(prev, b *freeBlock) {
	if prev == nil {
		fl.head = b.next
	} else {
		prev.next = b.next
	}
}

// Free returns [start, start+size) to the list, coalescing with an
// immediately adjacent block on either side so fragmentation doesn't grow
// unbounded across many small alloc/free cycles.
func (fl *FreeList) Free(start, size uint32) {
	for b := fl.head; b != nil; b = b.next {
		if b.start+b.size == start {
			b.size += size
			fl.tryMergeNext(b)
			return
		}
		if start+size == b.start {
			b.start = start
			b.size += size
			fl.tryMergeNext(b)
			return
		}
	}
	fl.head = &freeBlock{start: start, size: size, next: fl.head}
}

// tryMergeNext repeatedly absorbs any block adjacent to b's current extent
// (in either direction) until none remains, since the list is unordered by
// address (Free pushes each new block at the head) and coalescing can
// chain — freeing the one gap between two already-free blocks should merge
// all three into one.
func (fl *FreeList) tryMergeNext(b *freeBlock) {
	for {
		n := fl.findAdjacent(b)
		if n == nil {
			return
		}
		if n.start == b.start+b.size {
			b.size += n.size
		} else {
			b.start = n.start
			b.size += n.size
		}
		fl.removeNode(n)
	}
}

// findAdjacent returns any block (other than b) whose extent directly
// touches b's, in either direction.
func (fl *FreeList) findAdjacent(b *freeBlock) *freeBlock {
	for n := fl.head; n != nil; n = n.next {
		if n == b {
			continue
		}
		if n.start == b.start+b.size || b.start == n.start+n.size {
			return n
		}
	}
	return nil
}

// removeNode unlinks target from the list, scanning for its real
// predecessor rather than trusting a caller-supplied one.
func (fl *FreeList) removeNode(target *freeBlock) {
	if fl.head == target {
		fl.head = target.next
		return
	}
	for b := fl.head; b != nil; b = b.next {
		if b.next == target {
			b.next = target.next
			return
		}
	}
}

// TotalFree reports the sum of every free block's size, for diagnostics.
func (fl *FreeList) TotalFree() uint32 {
	var total uint32
	for b := fl.head; b != nil; b = b.next {
		total += b.size
	}
	return total
}
