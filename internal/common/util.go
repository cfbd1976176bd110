package common

import (
	"crypto/rand"
	"math/big"
)

// GenerateRandByteArray returns size bytes from crypto/rand.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray zeroes the buffer in place.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// RandIntn returns a uniform random integer in [0, n). n <= 0 yields 0.
func RandIntn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// RandDigits returns n random decimal digits.
func RandDigits(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + RandIntn(10))
	}
	return string(b)
}
