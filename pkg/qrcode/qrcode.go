// Package qrcode renders otpauth provisioning URIs as PNG QR codes
// using github.com/skip2/go-qrcode.
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent           = errors.New("qrcode: content cannot be empty")
	ErrFailedToGenerateQRCode = errors.New("qrcode: failed to generate QR code")
)

// DefaultSize is the image side in pixels used when size <= 0.
const DefaultSize = 256

const dataURIPrefix = "data:image/png;base64,"

// Generate encodes content as a PNG QR code with medium error correction.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerateQRCode, err)
	}
	return png, nil
}

// DataURI returns the QR code as a data:image/png;base64 URI for direct use in <img src>.
func DataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}
