package keyboard

// Activator receives key transitions. Activate is called when a key gains
// its first holder and Deactivate when it loses its last.
type Activator interface {
	Activate(slot int)
	Deactivate(slot int)
}

// Reconciler maps contacts to the key each one currently holds. Every
// contact holds at most one key; a key may be held by many contacts and
// stays active until the last of them lets go.
type Reconciler struct {
	out      Activator
	bindings map[ContactID]int
	holders  [SlotCount]int
}

func NewReconciler(out Activator) *Reconciler {
	return &Reconciler{
		out:      out,
		bindings: make(map[ContactID]int),
	}
}

// Update applies a start or move for id. ok is false when the position
// resolved to no key, which releases whatever id held.
func (r *Reconciler) Update(id ContactID, slot int, ok bool) {
	if ok && (slot < 0 || slot >= SlotCount) {
		ok = false
	}

	prev, bound := r.bindings[id]
	switch {
	case bound && ok && prev == slot:
		return
	case bound && ok:
		// release before acquire so a glide never leaves a stuck note
		r.unhold(prev)
		r.bindings[id] = slot
		r.hold(slot)
	case bound:
		delete(r.bindings, id)
		r.unhold(prev)
	case ok:
		r.bindings[id] = slot
		r.hold(slot)
	}
}

// End handles touch end or cancel. Unknown ids are ignored.
func (r *Reconciler) End(id ContactID) {
	prev, bound := r.bindings[id]
	if !bound {
		return
	}
	delete(r.bindings, id)
	r.unhold(prev)
}

// EndAll releases every contact
func (r *Reconciler) EndAll() {
	for id := range r.bindings {
		r.End(id)
	}
}

func (r *Reconciler) hold(slot int) {
	r.holders[slot]++
	if r.holders[slot] == 1 {
		r.out.Activate(slot)
	}
}

func (r *Reconciler) unhold(slot int) {
	if r.holders[slot] == 0 {
		return
	}
	r.holders[slot]--
	if r.holders[slot] == 0 {
		r.out.Deactivate(slot)
	}
}

// Binding returns the key id currently holds
func (r *Reconciler) Binding(id ContactID) (int, bool) {
	slot, ok := r.bindings[id]
	return slot, ok
}

// Holders is the number of contacts on slot
func (r *Reconciler) Holders(slot int) int {
	if slot < 0 || slot >= SlotCount {
		return 0
	}
	return r.holders[slot]
}

func (r *Reconciler) Active(slot int) bool {
	return r.Holders(slot) > 0
}

// Contacts is the number of bound contacts
func (r *Reconciler) Contacts() int {
	return len(r.bindings)
}
