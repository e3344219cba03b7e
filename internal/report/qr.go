package report

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// FileHashToQR creates a QR code PNG encoding a file's SHA-256 digest.
func FileHashToQR(hash string, size int) ([]byte, error) {
	normalized := sanitizeHash(hash)
	if normalized == "" {
		return nil, fmt.Errorf("file hash is empty")
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode(normalized, qrcode.Medium, size)
}

// sanitizeHash keeps only hex digits, lower-cased to match sha256sum output.
func sanitizeHash(hash string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(hash)) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
