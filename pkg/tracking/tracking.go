// Package tracking generates short human-shareable parcel tracking codes.
package tracking

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Length is the maximum length of a tracking code.
const Length = 12

const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Generate returns the base-36 millisecond timestamp, a dash and four random
// base-36 characters, cut to Length. Uniqueness is statistical only.
func Generate() string {
	return compose(time.Now().UnixMilli(), randomSuffix(4))
}

func compose(unixMilli int64, suffix string) string {
	code := strings.ToUpper(strconv.FormatInt(unixMilli, 36)) + "-" + suffix
	if len(code) > Length {
		code = code[:Length]
	}
	return code
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	base := big.NewInt(int64(len(alphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, base)
		if err != nil {
			// fallback: derive from the clock
			b[i] = alphabet[(time.Now().UnixNano()+int64(i)*17)%int64(len(alphabet))]
			continue
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}
