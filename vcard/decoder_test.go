package vcard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDecodeSentinels(t *testing.T) {
	cases := []struct {
		description string
		text        string
	}{
		{"Should fail without BEGIN/END", "FN:Just A Name"},
		{"Should fail for empty input", ""},
		{"Should fail without END", "BEGIN:VCARD\nFN:X\n"},
		{"Should fail without BEGIN", "FN:X\nEND:VCARD\n"},
		{"Should fail when END is not last", "BEGIN:VCARD\nEND:VCARD\nFN:X\n"},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			record, err := Decode(c.text)
			assert.ErrorIs(t, err, ErrMalformedVCard)
			assert.Nil(t, record)
		})
	}
}

func TestDecodeMinimalCard(t *testing.T) {
	record, err := Decode("BEGIN:VCARD\nFN:X\nEND:VCARD")
	require.Nil(t, err)

	assert.Empty(t, record.Phones)
	assert.Empty(t, record.Emails)
	assert.Equal(t, "", record.FirstName)
	assert.Equal(t, "", record.LastName, "FN should not be used to rebuild the name")
}

func TestDecodeAdaLovelace(t *testing.T) {
	text := "BEGIN:VCARD\n" +
		"VERSION:3.0\n" +
		"N:Lovelace;Ada;;;\n" +
		"FN:Ada Lovelace\n" +
		"ORG:Analytical Engines\n" +
		"TEL;TYPE=CELL:555-1000\n" +
		`NOTE:Pioneer\;\nmathematician` + "\n" +
		"END:VCARD\n"

	record, err := Decode(text)
	require.Nil(t, err)
	assert.Equal(t, adaLovelace(), record)
}

func TestDecodeTolerances(t *testing.T) {
	text := "\r\n" +
		"begin:vcard\r\n" +
		"VERSION:3.0\r\n" +
		"N:Turing;Alan;Mathison;;\r\n" +
		"item1.TEL;WORK:+44 20 0000\r\n" +
		"TEL:+44 20 0001\r\n" +
		"TEL;TYPE=satellite:+881 0000\r\n" +
		"EMAIL;TYPE=home:alan@example.org\r\n" +
		"EMAIL:turing@example.org\r\n" +
		"X-UNKNOWN;FOO=bar:ignored\r\n" +
		"NOTE:Codebreaker and\r\n" +
		"  computer scientist\r\n" +
		"BDAY:19120623\r\n" +
		"ADR;TYPE=HOME:;;2 Hampton Rd;Teddington;;TW11 0LB;UK\r\n" +
		"\r\n" +
		"end:vcard\r\n"

	record, err := Decode(text)
	require.Nil(t, err)

	assert.Equal(t, "Alan", record.FirstName)
	assert.Equal(t, "Mathison", record.MiddleName)
	assert.Equal(t, "Turing", record.LastName)
	assert.Equal(t, []Phone{
		{Number: "+44 20 0000", Kind: PhoneWork},
		{Number: "+44 20 0001", Kind: PhoneCell},
		{Number: "+881 0000", Kind: "satellite"},
	}, record.Phones)
	assert.Equal(t, []Email{
		{Address: "alan@example.org", Kind: EmailHome},
		{Address: "turing@example.org", Kind: EmailWork},
	}, record.Emails)
	assert.Equal(t, "Codebreaker and computer scientist", record.Notes)
	assert.Equal(t, NewDate(1912, time.June, 23), record.Birthday)
	assert.Nil(t, record.Addresses.Work)
	assert.Equal(t, &Address{Street: "2 Hampton Rd", City: "Teddington", PostalCode: "TW11 0LB", Country: "UK"}, record.Addresses.Home)
}

func TestDecodeSkipsCorruptLines(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	decoder := NewDecoder(zap.New(core).Sugar())

	record, err := decoder.Decode("BEGIN:VCARD\nN:Lovelace;Ada;;;\nthis line is corrupt\nBDAY:not-a-date\nORG:Analytical Engines\nEND:VCARD\n")
	require.Nil(t, err)

	assert.Equal(t, "Ada", record.FirstName)
	assert.Equal(t, "Analytical Engines", record.Organization)
	assert.Nil(t, record.Birthday)
	assert.Equal(t, 2, logs.Len(), "Should warn about the corrupt line & the bad BDAY")
}

func TestDecodeSkipsEmptyPhonesAndEmails(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	decoder := NewDecoder(zap.New(core).Sugar())

	record, err := decoder.Decode("BEGIN:VCARD\nN:Lovelace;Ada;;;\nTEL;TYPE=CELL:\nEMAIL;TYPE=WORK:\nTEL;TYPE=WORK:555-1000\nEND:VCARD\n")
	require.Nil(t, err)

	assert.Empty(t, record.Emails)
	assert.Equal(t, []Phone{{Number: "555-1000", Kind: PhoneWork}}, record.Phones)
	assert.Equal(t, 2, logs.Len())

	_, err = Encode(record)
	assert.Nil(t, err, "A decoded record should always encode")
}

func TestDecodeEscaping(t *testing.T) {
	notes := "Hello; World, \"quoted\"\nNewline"

	text, err := Encode(&ContactRecord{FirstName: "Ada", Notes: notes})
	require.Nil(t, err)
	assert.Contains(t, text, `NOTE:Hello\; World\, "quoted"\nNewline`)

	record, err := Decode(text)
	require.Nil(t, err)
	assert.Equal(t, notes, record.Notes)
}

func TestDecodeStructuredValues(t *testing.T) {
	record, err := Decode("BEGIN:VCARD\n" +
		`N:Smith\, Jr;Jo\;ann;;` + "\n" +
		"ADR;TYPE=WORK:PO 1;Suite 2;1 Main St;Springfield;IL;62701;USA\n" +
		"URL:https://example.com/a\\,b\n" +
		"X-SOCIALPROFILE;TYPE=LinkedIn:https://linkedin.com/in/jo\n" +
		"X-SOCIALPROFILE:https://example.com/no-type\n" +
		"PHOTO;TYPE=PNG:iVBORw0KGgo=\n" +
		"END:VCARD\n")
	require.Nil(t, err)

	assert.Equal(t, "Smith, Jr", record.LastName)
	assert.Equal(t, "Jo;ann", record.FirstName)
	assert.Equal(t, "", record.NameSuffix)
	assert.Equal(t, &Address{Street: "1 Main St", City: "Springfield", State: "IL", PostalCode: "62701", Country: "USA"}, record.Addresses.Work)
	assert.Equal(t, "https://example.com/a\\,b", record.Website, "URLs are not unescaped")
	assert.Equal(t, map[string]string{Linkedin: "https://linkedin.com/in/jo"}, record.Social)
	assert.Equal(t, &Media{Data: "iVBORw0KGgo=", Type: "PNG"}, record.Photo)
}
