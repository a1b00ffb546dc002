package borsh

// ReadVec decodes a u32-prefixed vector using read for every element.
func ReadVec[T any](r *Reader, read func(*Reader) T) []T {
	n := r.Count()
	if r.err != nil {
		return nil
	}
	out := make([]T, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, read(r))
	}
	return out
}

// WriteVec writes a u32 length prefix followed by every element.
func WriteVec[T any](data []byte, off int, vs []T, write func([]byte, int, T) int) int {
	i := off
	i += PutCount(data, i, len(vs))
	for _, v := range vs {
		i += write(data, i, v)
	}
	return i - off
}

// VecLen returns the encoded length of vs.
func VecLen[T any](vs []T, size func(T) int) int {
	n := 4
	for _, v := range vs {
		n += size(v)
	}
	return n
}

// ReadOption decodes a presence byte and, when set, one value.
func ReadOption[T any](r *Reader, read func(*Reader) T) *T {
	if !r.Present() {
		return nil
	}
	v := read(r)
	return &v
}

// WriteOption writes a presence byte and, when v is non-nil, the value.
func WriteOption[T any](data []byte, off int, v *T, write func([]byte, int, T) int) int {
	if v == nil {
		return PutBool(data, off, false)
	}
	n := PutBool(data, off, true)
	return n + write(data, off+n, *v)
}

// OptionLen returns the encoded length of v.
func OptionLen[T any](v *T, size func(T) int) int {
	if v == nil {
		return 1
	}
	return 1 + size(*v)
}

// Width returns a size function that always reports n.
func Width[T any](n int) func(T) int {
	return func(T) int { return n }
}

// ReadArray fills dst in order.
func ReadArray[T any](r *Reader, dst []T, read func(*Reader) T) {
	for i := 0; i < len(dst) && r.err == nil; i++ {
		dst[i] = read(r)
	}
}

// WriteArray writes every element of vs without a length prefix.
func WriteArray[T any](data []byte, off int, vs []T, write func([]byte, int, T) int) int {
	i := off
	for _, v := range vs {
		i += write(data, i, v)
	}
	return i - off
}

// ArrayLen returns the encoded length of vs without a length prefix.
func ArrayLen[T any](vs []T, size func(T) int) int {
	n := 0
	for _, v := range vs {
		n += size(v)
	}
	return n
}
