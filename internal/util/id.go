package util

import "crypto/rand"

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomAlphanumeric returns n random characters from [A-Za-z0-9].
func RandomAlphanumeric(n int) string {
	bytes := make([]byte, n)
	_, _ = rand.Read(bytes)
	for i, b := range bytes {
		bytes[i] = alphanumeric[int(b)%len(alphanumeric)]
	}
	return string(bytes)
}
