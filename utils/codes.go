package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
)

const referenceCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode returns n characters of A-Z/2-9 without the look-alikes 0/O and 1/I.
// crypto/rand with rand.Int avoids modulo bias.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid length")
	}
	var sb strings.Builder
	alphaLen := big.NewInt(int64(len(referenceCharset)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, alphaLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(referenceCharset[num.Int64()])
	}
	return sb.String(), nil
}

// GenerateReferenceCode → "TRV-XXXX-XXXX"
func GenerateReferenceCode() (string, error) {
	raw, err := GenerateCode(8)
	if err != nil {
		return "", err
	}
	return "TRV-" + raw[:4] + "-" + raw[4:], nil
}

// NormalizeReferenceCode upper-cases and trims a code typed by a user.
func NormalizeReferenceCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
