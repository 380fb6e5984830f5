package compiler

import (
	"strconv"

	"github.com/dolthub/swiss"
)

// LabelID is a monotonically-increasing identifier for a jump target,
// whether a control-flow label inserted by lowering or a user function
// entry point.
type LabelID int

// NoLabel is the sentinel LabelID meaning "no jump target set", used by
// the short-circuit lowering algorithm's optional fail/true labels.
const NoLabel LabelID = -1

// JumpManager hands out label ids and tracks, for each one, its
// resolved instruction position (set by the driver's first pass) and
// whether some jump or call actually targets it. Functions and
// ordinary labels share the same id space so that CALL and
// JMP/JEQ/... can both carry a LabelID.
//
// Two ids can later turn out to name the same instruction position,
// e.g. when short-circuit lowering's fail label and an if-chain's end
// label coincide; RemoveDuplicate unifies such pairs by recording an
// alias rather than rewriting every Command that already carries the
// losing id, so resolve() is consulted by every other accessor.
type JumpManager struct {
	positions *swiss.Map[LabelID, int]
	verified  *swiss.Map[LabelID, bool]
	funcNames *swiss.Map[LabelID, string]
	functions *swiss.Map[string, LabelID]
	alias     *swiss.Map[LabelID, LabelID]
	next      LabelID
}

// NewJumpManager returns an empty JumpManager.
func NewJumpManager() *JumpManager {
	return &JumpManager{
		positions: swiss.NewMap[LabelID, int](8),
		verified:  swiss.NewMap[LabelID, bool](8),
		funcNames: swiss.NewMap[LabelID, string](8),
		functions: swiss.NewMap[string, LabelID](8),
		alias:     swiss.NewMap[LabelID, LabelID](8),
	}
}

// resolve follows id's alias chain to the surviving label it was
// unified into, if any.
func (jm *JumpManager) resolve(id LabelID) LabelID {
	for {
		next, ok := jm.alias.Get(id)
		if !ok {
			return id
		}
		id = next
	}
}

// GetJump allocates a fresh anonymous label, e.g. for a loop's exit
// point or an if-chain's join point. name is a debugging hint only;
// the label's printed name is always the synthetic ".L<id>" form (see
// GetName).
func (jm *JumpManager) GetJump(name string) LabelID {
	id := jm.next
	jm.next++
	return id
}

// GetFunction returns the label id for a function name, allocating one
// on first reference so that a call site lowered before its callee's
// declaration still resolves to a stable id. A named function label is
// always considered used, matching the driver's rule that unverified
// synthetic labels are the only ones ever suppressed from the listing.
func (jm *JumpManager) GetFunction(name string) LabelID {
	if id, ok := jm.functions.Get(name); ok {
		return id
	}
	id := jm.GetJump(name)
	jm.functions.Put(name, id)
	jm.funcNames.Put(id, name)
	jm.verified.Put(id, true)
	return id
}

// GetName returns the display name of a label: ".<name>" for a
// function label, ".L<id>" for a synthetic one.
func (jm *JumpManager) GetName(id LabelID) string {
	id = jm.resolve(id)
	if name, ok := jm.funcNames.Get(id); ok {
		return "." + name
	}
	return ".L" + strconv.Itoa(int(id))
}

// RemoveDuplicate unifies the two optional labels a and b into a single
// surviving id, per the short-circuit lowering algorithm's use of
// remove_duplicate to merge a condition's fail/true labels:
//   - neither set: allocates and returns a fresh label.
//   - exactly one set: returns it unchanged.
//   - both set: b's id is aliased onto a's, so every later reference to
//     b (position, verification, GetName) transparently resolves to a;
//     a is returned as the survivor.
func (jm *JumpManager) RemoveDuplicate(a, b *LabelID) LabelID {
	aSet, bSet := a != nil, b != nil
	switch {
	case !aSet && !bSet:
		return jm.GetJump("merged")
	case aSet && !bSet:
		return *a
	case !aSet && bSet:
		return *b
	}

	survivor, lost := jm.resolve(*a), jm.resolve(*b)
	if survivor == lost {
		return survivor
	}
	if pos, ok := jm.positions.Get(lost); ok {
		jm.positions.Put(survivor, pos)
		jm.positions.Delete(lost)
	}
	if v, ok := jm.verified.Get(lost); ok {
		if v {
			jm.verified.Put(survivor, true)
		}
		jm.verified.Delete(lost)
	}
	jm.alias.Put(lost, survivor)
	return survivor
}

// SetPos records the instruction position of a label, as computed by
// the driver's first pass. It fails with DuplicateLabelPosition if the
// label was already positioned at a different instruction index.
func (jm *JumpManager) SetPos(id LabelID, pos int) error {
	id = jm.resolve(id)
	if prev, ok := jm.positions.Get(id); ok && prev != pos {
		return newErrf(DuplicateLabelPosition, "%s", jm.GetName(id))
	}
	jm.positions.Put(id, pos)
	return nil
}

// Pos returns the instruction position previously recorded for id.
func (jm *JumpManager) Pos(id LabelID) (int, bool) {
	return jm.positions.Get(jm.resolve(id))
}

// SetVerify marks id as targeted by at least one jump or call, so the
// driver's assembly emission does not suppress it as an unused
// synthetic label.
func (jm *JumpManager) SetVerify(id LabelID) {
	jm.verified.Put(jm.resolve(id), true)
}

// Verified reports whether some jump or call targets id, or it is a
// named function label (always considered used).
func (jm *JumpManager) Verified(id LabelID) bool {
	v, _ := jm.verified.Get(jm.resolve(id))
	return v
}

func (id LabelID) String() string { return "L" + strconv.Itoa(int(id)) }
