package universe

// flatten returns every body id in depth-first order, roots in ascending id
// order, satellites in their stored sibling order. This is the order focus
// cycling walks.
func (u *Universe) flatten() []ID {
	out := make([]ID, 0, len(u.bodies))
	var visit func(id ID)
	visit = func(id ID) {
		wrapper, ok := u.bodies[id]
		if !ok {
			return
		}
		out = append(out, id)
		for _, satID := range wrapper.Relations.Satellites {
			visit(satID)
		}
	}
	for _, rootID := range u.Roots() {
		visit(rootID)
	}
	return out
}

// NextBodyID returns the body after current in depth-first order, wrapping
// from the last body to the first. A missing current id yields the first
// body, so a stale focus degrades to a sane default instead of failing.
func (u *Universe) NextBodyID(current ID) (ID, bool) {
	return u.step(current, 1)
}

// PrevBodyID is the reverse of NextBodyID.
func (u *Universe) PrevBodyID(current ID) (ID, bool) {
	return u.step(current, -1)
}

func (u *Universe) step(current ID, delta int) (ID, bool) {
	order := u.flatten()
	if len(order) == 0 {
		return 0, false
	}
	for i, id := range order {
		if id == current {
			n := len(order)
			return order[(i+delta+n)%n], true
		}
	}
	return order[0], true
}
