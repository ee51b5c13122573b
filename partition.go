package pulse

// Partition splits h into two handlers on a predicate. For each emission
// exactly one of the two fires: the first when pred returns true, the second
// when it returns false. A predicate error propagates out of the emit and
// fires neither. Implemented as two sibling derivations that halt the branch
// the value does not belong to.
func Partition[E any](h *Handler[E], pred func(E) (bool, error)) (*Handler[E], *Handler[E]) {
	truthy := Derive(h, func(v E) (E, error) {
		ok, err := pred(v)
		if err != nil {
			return v, err
		}
		if !ok {
			return v, Halt("partition: predicate rejected")
		}
		return v, nil
	})
	falsy := Derive(h, func(v E) (E, error) {
		ok, err := pred(v)
		if err != nil {
			return v, err
		}
		if ok {
			return v, Halt("partition: predicate accepted")
		}
		return v, nil
	})
	return truthy, falsy
}
