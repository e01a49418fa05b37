package user

import (
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

// hashValue renders the SHA3-512 digest of s as the concatenation of each
// digest byte's decimal value — not hex. This is a deliberate format quirk
// carried over for compatibility with existing persisted databases: tokens
// and password hashes both use it, and a hex rendering would silently
// invalidate every stored credential.
func hashValue(s string) string {
	sum := sha3.Sum512([]byte(s))
	var b strings.Builder
	b.Grow(len(sum) * 3)
	for _, v := range sum {
		b.WriteString(strconv.Itoa(int(v)))
	}
	return b.String()
}
