package vcard

import "errors"

var (
	// ErrInvalidArgument is returned by the encoder when a record breaks a
	// structural precondition, e.g. a nil record or a phone without a kind.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedVCard is returned by the decoder when the text is not
	// wrapped in BEGIN:VCARD / END:VCARD.
	ErrMalformedVCard = errors.New("malformed vCard")

	ErrEmptyPayload = errors.New("QR payload is empty")
	ErrQREncode     = errors.New("failed to encode QR code")
	ErrQRDecode     = errors.New("failed to decode QR code")
	ErrInvalidSize  = errors.New("invalid QR code size")
)
