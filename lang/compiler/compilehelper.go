package compiler

import (
	"container/heap"
	"strconv"
)

// maxScratchReg is the highest register index CompileHelper may hand out
// as scratch space; 14 and 15 are reserved for bp and sp.
const maxScratchReg = 13

// regHeap is a min-heap of free register indices, so GetReg always
// returns the lowest-numbered register currently available. Keeping
// register numbers low and reused tends to produce tighter, more
// readable assembly listings than a simple counter would.
type regHeap []int

func (h regHeap) Len() int            { return len(h) }
func (h regHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h regHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *regHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *regHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// CompileHelper hands out scratch registers and temp-RAM placeholder
// names during expression lowering. It does not resolve them itself:
// MemoryManager.AllocateHelper later turns each placeholder into a real
// operand.
type CompileHelper struct {
	free     regHeap
	inUse    map[int]bool
	tempNext int
}

// NewCompileHelper returns a CompileHelper with every scratch register
// free, seeded starting at register 0.
func NewCompileHelper() *CompileHelper {
	ch := &CompileHelper{inUse: make(map[int]bool)}
	for i := 0; i <= maxScratchReg; i++ {
		ch.free = append(ch.free, i)
	}
	heap.Init(&ch.free)
	return ch
}

// GetReg allocates the lowest-numbered free scratch register and
// returns it as a register-placeholder name, "#<index>".
func (ch *CompileHelper) GetReg() (Operand, error) {
	if len(ch.free) == 0 {
		return NoOperand, newErr(UseBeforeInit, "no free registers")
	}
	idx := heap.Pop(&ch.free).(int)
	ch.inUse[idx] = true
	return NameOperand(regPlaceholderName(idx)), nil
}

// FreeReg releases a register placeholder obtained from GetReg. Freeing
// anything else is a no-op.
func (ch *CompileHelper) FreeReg(o Operand) {
	if !o.IsRegPlaceholder() {
		return
	}
	idx := o.regPlaceholderIndex()
	if !ch.inUse[idx] {
		return
	}
	delete(ch.inUse, idx)
	heap.Push(&ch.free, idx)
}

// GetTempRAM allocates a fresh temp-memory placeholder, "-<n>-call
// temp", which ExtractVariableAndCommands uses as the destination that
// receives the single return value of a call used inside an expression.
func (ch *CompileHelper) GetTempRAM() Operand {
	ch.tempNext++
	return NameOperand("-" + strconv.Itoa(ch.tempNext) + "-call temp")
}

// FreeAllReg resets the temp-ram counter, called once per statement so
// each statement's "-N-call temp" names start again from "-1-call
// temp". The register heap is untouched: live registers are still
// owned by whatever expression is still unwinding when a statement
// boundary is crossed, and are released individually via FreeReg.
func (ch *CompileHelper) FreeAllReg() {
	ch.tempNext = 0
}

// Reset restores a fresh register pool, used between function bodies.
func (ch *CompileHelper) Reset() {
	ch.free = nil
	for i := 0; i <= maxScratchReg; i++ {
		ch.free = append(ch.free, i)
	}
	heap.Init(&ch.free)
	ch.inUse = make(map[int]bool)
	ch.tempNext = 0
}

// ExtractVariableAndCommands resolves a lowered subexpression's result
// into a value every consumer can treat uniformly: a commands list
// whose tail is still an unclaimed CALL_HELPER (nobody has assigned its
// destination yet) gets a fresh temp-ram name minted and bound as that
// destination, and the temp name becomes the value. Anything else,
// including a CALL_HELPER whose destination some earlier caller already
// claimed, passes through unchanged.
func (ch *CompileHelper) ExtractVariableAndCommands(result Operand, commands []Command) (Operand, []Command) {
	if len(commands) == 0 {
		return result, commands
	}
	tail := &commands[len(commands)-1]
	if tail.Op != CALL_HELPER || len(tail.CallDests) != 0 {
		return result, commands
	}
	temp := ch.GetTempRAM()
	tail.CallDests = []Operand{temp}
	return temp, commands
}

func regPlaceholderName(idx int) string {
	return "#" + strconv.Itoa(idx)
}
