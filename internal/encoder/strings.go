package encoder

import "hash/crc32"

// strToBytes unescapes the backslash escapes the lexer leaves in string
// literal attribute values (\n, \r, \t) and appends the NUL terminator the
// wire format expects, mirroring ovmc5_vm.py's str_to_bytes.
func strToBytes(s string) []byte {
	out := make([]byte, 0, len(s)+1)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			default:
				c = s[i]
			}
		}
		out = append(out, c)
	}
	return append(out, 0)
}

// genStr encodes a length-prefixed, NUL-terminated string: an unsigned
// varint byte count followed by the unescaped payload and its terminator.
func genStr(s string) []byte {
	body := strToBytes(s)
	out := genUint(uint64(len(body)), 0)
	return append(out, body...)
}

// genStrHash appends a little-endian CRC32 of the ORIGINAL (escaped) string
// to genStr's output, matching the runtime's selector-hashing scheme
// (ovmc5_vm.py's gen_str_hash hashes the escaped source text, not the
// unescaped bytes str_to_bytes produces).
func genStrHash(s string) []byte {
	out := genStr(s)
	sum := crc32.ChecksumIEEE([]byte(s))
	return append(out, genUint32LE(sum)...)
}
