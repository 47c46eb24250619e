package util

import (
	"crypto/rand"
)

const certAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCertificateCode returns a human-readable certificate code of the
// form CERT-XXXXXXXXXX. The alphabet omits easily-confused characters.
func GenerateCertificateCode() string {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = certAlphabet[int(b)%len(certAlphabet)]
	}
	return "CERT-" + string(buf)
}
