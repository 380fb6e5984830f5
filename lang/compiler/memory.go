package compiler

import (
	"strings"

	"golang.org/x/exp/slices"
)

// reservedFrameSlots is the number of stack-frame words reserved ahead
// of a function's return-value slots: the caller's saved bp and the
// return address. return_offset for a function is therefore
// reservedFrameSlots + its return count.
const reservedFrameSlots = 2

// scope is one link in a function body's chain of nested variable
// scopes. Looking up a name walks outward from the innermost scope to
// the function's base scope, so an inner block may shadow an outer
// one without disturbing the outer variable's offset.
type scope struct {
	vars   map[string]int
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]int), parent: parent}
}

func (s *scope) lookup(name string) (int, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if off, ok := sc.vars[name]; ok {
			return off, true
		}
	}
	return 0, false
}

// MemoryManager allocates stack-frame offsets for a function body: its
// return-value slots, its parameters, and every local variable, and
// expands the RETURN_HELPER and CALL_HELPER pseudo-commands lowering
// emits into real move/push/call sequences once a function's frame
// size is known.
type MemoryManager struct {
	funcs *SharedFunctionTable
	jm    *JumpManager
	ch    *CompileHelper

	cur          *scope
	free         []int // kept sorted ascending so getMin is O(1)
	frameSize    int
	returnOffset int
	tempRAM      map[string]int
}

// NewMemoryManager returns a MemoryManager bound to the function table
// and jump manager shared by the whole compilation unit.
func NewMemoryManager(funcs *SharedFunctionTable, jm *JumpManager, ch *CompileHelper) *MemoryManager {
	return &MemoryManager{funcs: funcs, jm: jm, ch: ch}
}

// EnterFunction resets the allocator for a new function body, reserving
// the return-value slots and binding each parameter to the next
// consecutive offset.
func (mm *MemoryManager) EnterFunction(name string, params []string) error {
	retc, ok := mm.funcs.ReturnCount(name)
	if !ok {
		return newErrf(UseBeforeInit, "function %q has no registered arity", name)
	}
	mm.cur = newScope(nil)
	mm.free = nil
	mm.tempRAM = make(map[string]int)
	mm.returnOffset = reservedFrameSlots + retc
	mm.frameSize = mm.returnOffset

	for _, p := range params {
		if _, err := mm.allocate(p); err != nil {
			return err
		}
	}
	return nil
}

// ReturnOffset is the frame offset just past the function's return-value
// slots, where its parameters and locals begin: return_offset =
// reservedFrameSlots + returns.
func (mm *MemoryManager) ReturnOffset() int { return mm.returnOffset }

// PushScope opens a nested scope. The lowering pass does not call it:
// every variable of a function body, including those first assigned in
// a loop or conditional body, lives in the function's base scope.
func (mm *MemoryManager) PushScope() { mm.cur = newScope(mm.cur) }

// PopScope closes the innermost scope. The offsets it owned are not
// freed here; only an explicit FreeDead call releases a slot, and the
// lowering pass makes none, so a variable's slot stays occupied for the
// rest of its function.
func (mm *MemoryManager) PopScope() {
	if mm.cur.parent != nil {
		mm.cur = mm.cur.parent
	}
}

// getMin returns the smallest offset not currently occupied, reusing a
// slot freed by FreeDead or FreeTemp before extending the frame. The
// lowering pass calls neither, so within it the frame grows by one slot
// per new variable or temp.
func (mm *MemoryManager) getMin() int {
	if len(mm.free) > 0 {
		off := mm.free[0]
		mm.free = mm.free[1:]
		return off
	}
	off := mm.frameSize
	mm.frameSize++
	return off
}

// markFree returns off to the pool, keeping the pool sorted so getMin
// stays a constant-time pop of the smallest offset.
func (mm *MemoryManager) markFree(off int) {
	i, found := slices.BinarySearch(mm.free, off)
	if found {
		return
	}
	mm.free = slices.Insert(mm.free, i, off)
}

// allocate binds name to a fresh offset in the innermost scope.
func (mm *MemoryManager) allocate(name string) (int, error) {
	if isReservedName(name) {
		return 0, newErrf(ReservedName, "%s", name)
	}
	off := mm.getMin()
	mm.cur.vars[name] = off
	return off, nil
}

// Declare allocates storage for a newly-assigned plain variable the
// first time it is seen. Reassignment is a no-op: the name keeps its
// existing offset.
func (mm *MemoryManager) Declare(name string) (Operand, error) {
	if off, ok := mm.cur.lookup(name); ok {
		return RamOperand(off), nil
	}
	off, err := mm.allocate(name)
	if err != nil {
		return NoOperand, err
	}
	return RamOperand(off), nil
}

// Lookup resolves a plain variable already in scope, failing with
// UseBeforeInit if it was never assigned.
func (mm *MemoryManager) Lookup(name string) (Operand, error) {
	off, ok := mm.cur.lookup(name)
	if !ok {
		return NoOperand, newErrf(UseBeforeInit, "%s", name)
	}
	return RamOperand(off), nil
}

// FreeDead releases name's frame slot back to the pool. It is a no-op
// for register placeholders ("#...") and temp-memory placeholders
// ("-..."), which CompileHelper and AllocateHelper own respectively.
func (mm *MemoryManager) FreeDead(name string) {
	if isPlaceholder(name) {
		return
	}
	if off, ok := mm.cur.vars[name]; ok {
		mm.markFree(off)
	}
}

func isPlaceholder(name string) bool {
	return strings.HasPrefix(name, "#") || strings.HasPrefix(name, "-")
}

func isReservedName(name string) bool {
	switch name {
	case "bp", "sp":
		return true
	}
	return IsBuiltin(name)
}

// AllocateHelper resolves a KindName operand produced during lowering
// into a concrete operand: a register placeholder resolves directly to
// its RegOperand, a temp-memory placeholder is given a dedicated frame
// slot on first use (reused for the rest of the statement it was
// minted in), and a plain name is looked up in scope.
func (mm *MemoryManager) AllocateHelper(o Operand) (Operand, error) {
	if o.Kind != KindName {
		return o, nil
	}
	switch {
	case o.IsRegPlaceholder():
		return RegOperand(o.regPlaceholderIndex()), nil
	case o.IsTempRam():
		if off, ok := mm.tempRAM[o.Name]; ok {
			return RamOperand(off), nil
		}
		off := mm.getMin()
		mm.tempRAM[o.Name] = off
		return RamOperand(off), nil
	default:
		return mm.Lookup(o.Name)
	}
}

// FreeTemp releases a temp-memory placeholder's slot so getMin can hand
// it out again. The lowering pass does not call it.
func (mm *MemoryManager) FreeTemp(o Operand) {
	if !o.IsTempRam() {
		return
	}
	if off, ok := mm.tempRAM[o.Name]; ok {
		mm.markFree(off)
		delete(mm.tempRAM, o.Name)
	}
}

// videoShortcut maps a built-in video setter name to the single video
// opcode family it lowers directly to, bypassing the general call
// sequence entirely since these built-ins never push a frame.
var videoShortcut = map[string]Opcode{
	"VID_RED":   VID_RED_I,
	"VID_GREEN": VID_GREEN_I,
	"VID_BLUE":  VID_BLUE_I,
	"VID_X":     VID_X_I,
	"VID_Y":     VID_Y_I,
}

// videoChannelOrder is the argument order VIDEO's five channels are
// set in: red, green, blue, x, y.
var videoChannelOrder = []string{"VID_RED", "VID_GREEN", "VID_BLUE", "VID_X", "VID_Y"}

// expandVideo lowers a call to the five-argument VIDEO built-in into
// the five single-channel setters followed by the VID trigger, per
// §4.E's built-in shortcut.
func (mm *MemoryManager) expandVideo(c Command) ([]Command, error) {
	if len(c.CallArgs) != 5 {
		return nil, newErrf(ArityMismatch, "VIDEO: want 5 arguments, got %d", len(c.CallArgs))
	}
	var out []Command
	for i, channel := range videoChannelOrder {
		resolved, err := mm.AllocateHelper(c.CallArgs[i])
		if err != nil {
			return nil, err
		}
		variant, err := correctOp(videoShortcut[channel], NoOperand, resolved)
		if err != nil {
			return nil, err
		}
		out = append(out, Command{Op: variant, Source: resolved})
	}
	out = append(out, Command{Op: VID})
	return out, nil
}

// ExpandCall lowers a CALL_HELPER command into the general call
// sequence: MOV each argument into the frame slots above the caller's
// current stack extent, ADD that extent to sp, CALL the function label,
// then bind each destination the assignment named to its return slot
// (see bindOrMoveReturn; only a destination that already has a home
// gets a MOV). A video setter, VID and HALT lower to their single
// opcode instead, and VIDEO to its five setters plus VID.
func (mm *MemoryManager) ExpandCall(name string, c Command) ([]Command, error) {
	if op, ok := videoShortcut[name]; ok {
		if len(c.CallArgs) != 1 {
			return nil, newErrf(ArityMismatch, "%s: want 1 argument, got %d", name, len(c.CallArgs))
		}
		resolved, err := mm.AllocateHelper(c.CallArgs[0])
		if err != nil {
			return nil, err
		}
		variant, err := correctOp(op, NoOperand, resolved)
		if err != nil {
			return nil, err
		}
		return []Command{{Op: variant, Source: resolved}}, nil
	}
	switch name {
	case "VID":
		return []Command{{Op: VID}}, nil
	case "HALT":
		return []Command{{Op: HALT}}, nil
	case "VIDEO":
		return mm.expandVideo(c)
	}

	argc, ok := mm.funcs.ArgCount(name)
	if !ok {
		return nil, newErrf(UseBeforeInit, "call to undeclared function %q", name)
	}
	if argc != len(c.CallArgs) {
		return nil, newErrf(ArityMismatch, "%s: want %d argument(s), got %d", name, argc, len(c.CallArgs))
	}

	retc, _ := mm.funcs.ReturnCount(name)
	spCurrent := mm.spCurrent()
	argBase := retc + spCurrent + 2

	var out []Command
	for i, arg := range c.CallArgs {
		resolved, err := mm.AllocateHelper(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, Command{Op: MOV_RR, Destination: RamOperand(argBase + i), Source: resolved})
	}
	out = append(out, Command{Op: ADD_RI, Destination: RegOperand(RegSP), Source: IntOperand(int64(spCurrent))})
	out = append(out, Command{Op: CALL, CallLabel: mm.jm.GetFunction(name)})

	for i, dst := range c.CallDests {
		bound, err := mm.bindOrMoveReturn(dst, spCurrent+i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, bound...)
	}
	return out, nil
}

// spCurrent is the caller's current stack-frame extent at a call site,
// max(occupied offsets) + 1: the frame's high-water mark trimmed back
// past any freed slots sitting at its very top, so a call never
// reserves more scratch space above the frame than the live slots
// actually require.
func (mm *MemoryManager) spCurrent() int {
	top := mm.frameSize
	for top > 0 {
		_, found := slices.BinarySearch(mm.free, top-1)
		if !found {
			break
		}
		top--
	}
	return top
}

// bindOrMoveReturn implements the general call's return-binding rule: a
// destination name with no home yet is bound directly to its return
// slot with no move emitted, since the slot already holds its value the
// moment the call returns; a destination that already has a home
// elsewhere (a reassigned variable, a register, a temp) gets an
// explicit move from the return slot into it.
func (mm *MemoryManager) bindOrMoveReturn(dst Operand, slot int) ([]Command, error) {
	if dst.Kind == KindName && !dst.IsRegPlaceholder() && !dst.IsTempRam() {
		if _, ok := mm.cur.lookup(dst.Name); !ok {
			return nil, mm.bindName(dst.Name, slot)
		}
	}
	resolved, err := mm.AllocateHelper(dst)
	if err != nil {
		return nil, err
	}
	return []Command{{Op: MOV_RR, Destination: resolved, Source: RamOperand(slot)}}, nil
}

// bindName binds a not-yet-declared plain variable directly to off
// without allocating from the free pool, extending the frame if off
// falls beyond it.
func (mm *MemoryManager) bindName(name string, off int) error {
	if isReservedName(name) {
		return newErrf(ReservedName, "%s", name)
	}
	mm.cur.vars[name] = off
	if off >= mm.frameSize {
		mm.frameSize = off + 1
	}
	return nil
}

// ExpandReturn lowers a RETURN_HELPER command into moves that copy each
// returned expression's operand into the function's reserved
// return-value slots, followed by RTRN.
func (mm *MemoryManager) ExpandReturn(c Command) ([]Command, error) {
	var out []Command
	for i, v := range c.ReturnExprs {
		resolved, err := mm.AllocateHelper(v)
		if err != nil {
			return nil, err
		}
		out = append(out, Command{Op: MOV_RR, Destination: RamOperand(reservedFrameSlots + i), Source: resolved})
	}
	out = append(out, Command{Op: RTRN})
	return out, nil
}

// Prologue returns the commands that set up a function's frame on
// entry: save the caller's bp, point bp at the new frame, and advance
// sp past every local slot the function body allocated.
func (mm *MemoryManager) Prologue() []Command {
	return []Command{
		{Op: PUSH, Source: RegOperand(RegBP)},
		{Op: MOV_RR, Destination: RegOperand(RegBP), Source: RegOperand(RegSP)},
		{Op: ADD_RI, Destination: RegOperand(RegSP), Source: IntOperand(int64(mm.frameSize))},
	}
}

// FrameSize reports the number of words the current function's frame
// occupies, including its reserved and temp slots.
func (mm *MemoryManager) FrameSize() int { return mm.frameSize }
