package vcard

import (
	"bytes"
	"image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/pkg/errors"
	qrgen "github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 256
	MaxQRSize     = 4096
)

// RenderQR draws payload (normally the output of Encode) as a PNG QR code of
// size x size pixels. A size <= 0 falls back to DefaultQRSize.
func RenderQR(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}
	if size <= 0 {
		size = DefaultQRSize
	}
	if size > MaxQRSize {
		return nil, ErrInvalidSize
	}

	qr, err := qrgen.New(payload, qrgen.Medium)
	if err != nil {
		return nil, errors.Wrapf(ErrQREncode, "%v", err)
	}

	pngData, err := qr.PNG(size)
	if err != nil {
		return nil, errors.Wrapf(ErrQREncode, "%v", err)
	}

	return pngData, nil
}

// ScanQR reads the text stored in a PNG QR code.
func ScanQR(pngData []byte) (string, error) {
	if len(pngData) == 0 {
		return "", ErrQRDecode
	}

	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return "", errors.Wrapf(ErrQRDecode, "%v", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", errors.Wrapf(ErrQRDecode, "%v", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", errors.Wrapf(ErrQRDecode, "%v", err)
	}

	return result.GetText(), nil
}
