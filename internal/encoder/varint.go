// Package encoder implements pass E: translating the peephole-optimized IR
// into the wire format spec.md §4.4 describes, grounded throughout on
// ovmc5_vm.py's gen_* byte-emission routines. Every gen_* helper in that
// file becomes one method here with the same argument shape; the one
// deliberate deviation is the forward-reference fixup pass (see refs.go),
// which replaces the original's permanent 9-byte pessimistic reservation
// with an iterative shrink-to-fit pass, and the CRC32 byte order used by
// gen_str_hash/gen_uint32, which spec.md calls out as little-endian where
// the original writes big-endian.
package encoder

// byteAt returns the n'th byte (0 = least significant) of x, mirroring
// ovmc5_vm.py's byte(x, n).
func byteAt(x int64, n int) byte {
	return byte((x >> (8 * uint(n))) & 0xff)
}

// genInt encodes a signed integer using the variable-width framing spec.md
// §4.4 describes: a header byte whose top 3 bits are a length tag (0..6,
// meaning tag+1 bytes) and whose low isize bits hold the value's high-order
// data bits, followed by big-endian continuation bytes. Tag 7 (0xe0) is an
// escape to a fixed 9-byte (1 tag + 8 payload) encoding for values outside
// every sized range. force, when non-zero, pins the byte width (1..7)
// regardless of whether a narrower encoding would fit — used to emit a
// fixed-size placeholder that a later fixup can only shrink, never grow.
func genInt(n int64, force int, isize int) []byte {
	sh := isize - 1
	tag := -1
	width := 0
	for i := 0; i < 7; i++ {
		r := i + 1
		lo := -(int64(1) << uint(sh))
		hi := int64(1) << uint(sh)
		if force == r || (force == 0 && n >= lo && n < hi) {
			tag = i
			width = r
			break
		}
		sh += 8
	}
	if tag < 0 {
		out := make([]byte, 9)
		out[0] = 0xe0
		for i := 0; i < 8; i++ {
			out[1+i] = byteAt(n, 7-i)
		}
		return out
	}
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byteAt(n, width-1-i)
	}
	out[0] = (out[0] & byte((1<<uint(isize))-1)) | byte(tag<<5)
	return out
}

// genUint is genInt's unsigned counterpart: zero-extended ranges instead of
// sign-extended ones, and the header byte's data bits are left untouched
// (ORed with the tag) rather than masked first, matching ovmc5_vm.py's
// gen_uint.
func genUint(n uint64, force int) []byte {
	m := uint64(1) << 5
	tag := -1
	width := 0
	for i := 0; i < 7; i++ {
		r := i + 1
		if force == r || (force == 0 && n < m) {
			tag = i
			width = r
			break
		}
		m <<= 8
	}
	if tag < 0 {
		out := make([]byte, 9)
		out[0] = 0xe0
		for i := 0; i < 8; i++ {
			out[1+i] = byteAt(int64(n), 7-i)
		}
		return out
	}
	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = byteAt(int64(n), width-1-i)
	}
	out[0] |= byte(tag << 5)
	return out
}

// genUint32LE encodes n as a fixed 4-byte little-endian word, used for the
// CRC32 suffix gen_str_hash appends. ovmc5_vm.py's gen_uint32 is big-endian;
// spec.md's literal wording ("little-end-first CRC32") deviates here, and
// this function exists only to serve that one caller.
func genUint32LE(n uint32) []byte {
	return []byte{
		byte(n),
		byte(n >> 8),
		byte(n >> 16),
		byte(n >> 24),
	}
}
