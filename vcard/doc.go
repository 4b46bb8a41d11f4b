// Package vcard converts contact records to and from the vCard 3.0 dialect
// served by tapcard card pages, and renders that text as a QR code.
//
// Encode writes properties in a fixed order so consumers may match on
// prefixes:
//
//	N, FN, ORG, TITLE, ROLE, EMAIL*, TEL*, ADR;TYPE=WORK, ADR;TYPE=HOME,
//	URL, X-SOCIALPROFILE*, BDAY, NOTE, PHOTO
//
// Lines end with "\n" and are never folded. Text values have '\', ',' and
// ';' backslash-escaped and newlines written as the two characters `\n`.
// URL, X-SOCIALPROFILE and PHOTO values are written verbatim.
//
// Decode reads that dialect back; the result of Decode(Encode(r)) equals r
// except for the logo, the address district, and FN which is derived. For
// address books exported by other applications use ImportCards.
//
// All functions are safe for concurrent use.
package vcard
