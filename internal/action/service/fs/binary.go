package fs

// binarySample matches git's heuristic of scanning the first 8000 bytes.
const binarySample = 8000

// IsBinary reports whether b looks like binary data: a NUL byte in the
// leading sample, unless a UTF-16 or UTF-32 byte order mark says otherwise.
func IsBinary(b []byte) bool {
	if len(b) >= 2 && ((b[0] == 0xFF && b[1] == 0xFE) || (b[0] == 0xFE && b[1] == 0xFF)) {
		return false
	}
	if len(b) >= 4 && b[0] == 0 && b[1] == 0 && b[2] == 0xFE && b[3] == 0xFF {
		return false
	}
	for _, c := range b[:min(len(b), binarySample)] {
		if c == 0 {
			return true
		}
	}
	return false
}
