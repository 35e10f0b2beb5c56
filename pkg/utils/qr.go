package utils

import (
	"github.com/skip2/go-qrcode"
)

// GenerateQRCode encodes content as a PNG of the given pixel size.
func GenerateQRCode(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
