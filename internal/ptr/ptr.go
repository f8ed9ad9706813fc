package ptr

// V returns a pointer to a copy of v.
func V[T any](v T) *T {
	return &v
}

// Deref returns the value `p` points to or the zero value if `p` is nil.
func Deref[T any](p *T) T {
	var v T
	if p != nil {
		v = *p
	}

	return v
}
