package vcard

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addressBookExport = "BEGIN:VCARD\r\n" +
	"VERSION:3.0\r\n" +
	"N:Hopper;Grace;Brewster;;\r\n" +
	"FN:Grace Brewster Hopper\r\n" +
	"ORG:US Navy;Research\r\n" +
	"TITLE:Computer Scientist\r\n" +
	"EMAIL;TYPE=INTERNET;TYPE=HOME:grace@home.example\r\n" +
	"TEL;TYPE=VOICE:555-0001\r\n" +
	"TEL;TYPE=FAX:555-0002\r\n" +
	"ADR;TYPE=HOME:;;1 Main St;Arlington;VA;22202;USA\r\n" +
	"ADR;TYPE=HOME:;;2 Other St;Boston;MA;02101;USA\r\n" +
	"URL:https://navy.mil/grace\r\n" +
	"X-SOCIALPROFILE;TYPE=GitHub:https://github.com/grace\r\n" +
	"BDAY:1906-12-09\r\n" +
	"END:VCARD\r\n" +
	"BEGIN:VCARD\r\n" +
	"VERSION:4.0\r\n" +
	"FN:Alan Mathison Turing\r\n" +
	"TEL;TYPE=work:tel:+44-20-0000\r\n" +
	"PHOTO:https://example.com/alan.jpg\r\n" +
	"END:VCARD\r\n"

func TestImportCards(t *testing.T) {
	records, err := ImportCards(strings.NewReader(addressBookExport))
	require.Nil(t, err)
	require.Len(t, records, 2)

	grace := records[0]
	assert.Equal(t, "Grace", grace.FirstName)
	assert.Equal(t, "Brewster", grace.MiddleName)
	assert.Equal(t, "Hopper", grace.LastName)
	assert.Equal(t, "US Navy", grace.Organization)
	assert.Equal(t, "Computer Scientist", grace.Title)
	assert.Equal(t, []Email{{Address: "grace@home.example", Kind: EmailHome}}, grace.Emails)
	assert.Equal(t, []Phone{
		{Number: "555-0001", Kind: PhoneCell},
		{Number: "555-0002", Kind: PhoneFax},
	}, grace.Phones)
	assert.Nil(t, grace.Addresses.Work)
	assert.Equal(t, &Address{Street: "1 Main St", City: "Arlington", State: "VA", PostalCode: "22202", Country: "USA"}, grace.Addresses.Home)
	assert.Equal(t, "https://navy.mil/grace", grace.Website)
	assert.Equal(t, map[string]string{Github: "https://github.com/grace"}, grace.Social)
	assert.Equal(t, NewDate(1906, time.December, 9), grace.Birthday)

	alan := records[1]
	assert.Equal(t, "Alan", alan.FirstName, "Should fall back to FN without N")
	assert.Equal(t, "Mathison Turing", alan.LastName)
	assert.Equal(t, []Phone{{Number: "+44-20-0000", Kind: PhoneWork}}, alan.Phones)
	assert.Nil(t, alan.Photo, "Should not import linked photos")
}

func TestImportCardsEncodes(t *testing.T) {
	records, err := ImportCards(strings.NewReader(addressBookExport))
	require.Nil(t, err)

	for _, record := range records {
		_, err := Encode(&record)
		assert.Nil(t, err)
	}
}

func TestImportCardsMalformed(t *testing.T) {
	cases := []struct {
		description string
		input       string
	}{
		{"Should fail for an empty file", ""},
		{"Should fail for a file that is not a vCard", "name,phone\nAda,555-1000\n"},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			records, err := ImportCards(strings.NewReader(c.input))
			assert.ErrorIs(t, err, ErrMalformedVCard)
			assert.Empty(t, records)
		})
	}
}

func TestImportCardsPhotoType(t *testing.T) {
	cases := []struct {
		description  string
		photoLine    string
		expectedType string
		expectedLine string
	}{
		{
			description:  "Should trim the image/ prefix of a media type param",
			photoLine:    "PHOTO;ENCODING=b;TYPE=image/jpeg:/9j/4AAQ",
			expectedType: "JPEG",
			expectedLine: "PHOTO;ENCODING=BASE64;TYPE=JPEG:/9j/4AAQ",
		},
		{
			description:  "Should upper-case a lower-case type",
			photoLine:    "PHOTO;ENCODING=b;TYPE=png:iVBORw0KGgo=",
			expectedType: "PNG",
			expectedLine: "PHOTO;ENCODING=BASE64;TYPE=PNG:iVBORw0KGgo=",
		},
		{
			description:  "Should take the type from a data URI",
			photoLine:    "PHOTO:data:image/gif;base64,R0lGODlh",
			expectedType: "GIF",
			expectedLine: "PHOTO;ENCODING=BASE64;TYPE=GIF:R0lGODlh",
		},
		{
			description:  "Should drop a type that cannot be written back",
			photoLine:    "PHOTO;ENCODING=b;TYPE=\"x/y z\":/9j/4AAQ",
			expectedType: "",
			expectedLine: "PHOTO;ENCODING=BASE64;TYPE=JPEG:/9j/4AAQ",
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			input := "BEGIN:VCARD\r\nVERSION:3.0\r\nN:Lovelace;Ada;;;\r\n" + c.photoLine + "\r\nEND:VCARD\r\n"

			records, err := ImportCards(strings.NewReader(input))
			require.Nil(t, err)
			require.Len(t, records, 1)
			require.NotNil(t, records[0].Photo)
			assert.Equal(t, c.expectedType, records[0].Photo.Type)

			text, err := Encode(&records[0])
			require.Nil(t, err)
			assert.Contains(t, text, c.expectedLine+"\n")
		})
	}
}
