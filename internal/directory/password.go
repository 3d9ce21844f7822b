package directory

import "unicode/utf16"

// EncodePassword renders a plaintext password in the wire format Active
// Directory requires for the unicodePwd attribute: the value wrapped in
// double quotes and encoded as UTF-16 little-endian. Sending plain UTF-8
// is accepted by the server but stores a corrupted password.
func EncodePassword(plaintext string) []byte {
	quoted := `"` + plaintext + `"`
	codes := utf16.Encode([]rune(quoted))
	out := make([]byte, 0, len(codes)*2)
	for _, c := range codes {
		out = append(out, byte(c), byte(c>>8))
	}
	return out
}
