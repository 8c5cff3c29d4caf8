package utils

import (
	"bytes"
	"image/png"

	"github.com/skip2/go-qrcode"
)

// DeskQRPNG renders the check-in URL printed on a desk as a PNG QR
// code.  The content is the public check-in URL for a specific
// tenant+desk pair; size is the edge length in pixels.
func DeskQRPNG(content string, size int) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(size)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
