package export

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the side length in pixels of generated QR codes.
const QRSize = 256

// QR encodes the calculation's public URL as a PNG QR code.
func QR(url string) ([]byte, error) {
	return qrcode.Encode(url, qrcode.Medium, QRSize)
}
