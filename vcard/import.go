package vcard

import (
	"io"
	"strings"

	govcard "github.com/emersion/go-vcard"
	"github.com/pkg/errors"
)

// ImportCards reads every card of a third-party address book export
// (vCard 2.1, 3.0 or 4.0, folded lines, any number of cards). Unlike
// Decode it is lenient: properties that do not map onto a ContactRecord
// are dropped, and only the first work and home address are kept.
func ImportCards(r io.Reader) ([]ContactRecord, error) {
	dec := govcard.NewDecoder(r)

	var records []ContactRecord
	for {
		card, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			if len(records) == 0 {
				return nil, errors.Wrapf(ErrMalformedVCard, "decode card: %v", err)
			}
			return records, errors.Wrapf(ErrMalformedVCard, "decode card %d: %v", len(records)+1, err)
		}

		records = append(records, recordFromCard(card))
	}

	if len(records) == 0 {
		return nil, errors.Wrap(ErrMalformedVCard, "no cards found")
	}

	return records, nil
}

func recordFromCard(card govcard.Card) ContactRecord {
	record := ContactRecord{
		Title: card.Value(govcard.FieldTitle),
		Role:  card.Value(govcard.FieldRole),
		Notes: card.Value(govcard.FieldNote),
	}

	if name := card.Name(); name != nil {
		record.LastName = name.FamilyName
		record.FirstName = name.GivenName
		record.MiddleName = name.AdditionalName
		record.NamePrefix = name.HonorificPrefix
		record.NameSuffix = name.HonorificSuffix
	} else if parts := strings.Fields(card.Value(govcard.FieldFormattedName)); len(parts) > 0 {
		// No structured name, fall back to splitting the display name
		record.FirstName = parts[0]
		if len(parts) > 1 {
			record.LastName = strings.Join(parts[1:], " ")
		}
	}

	if org := card.Value(govcard.FieldOrganization); org != "" {
		record.Organization = strings.Split(org, ";")[0]
	}

	for _, field := range card[govcard.FieldEmail] {
		if field.Value == "" {
			continue
		}
		record.Emails = append(record.Emails, Email{
			Address: field.Value,
			Kind:    EmailKind(importKind(field.Params.Types(), knownEmailKeys, string(EmailWork))),
		})
	}

	for _, field := range card[govcard.FieldTelephone] {
		number := strings.TrimPrefix(field.Value, "tel:")
		if number == "" {
			continue
		}
		record.Phones = append(record.Phones, Phone{
			Number: number,
			Kind:   PhoneKind(importKind(field.Params.Types(), knownPhoneKeys, string(PhoneCell))),
		})
	}

	for _, address := range card.Addresses() {
		imported := &Address{
			Street:     address.StreetAddress,
			City:       address.Locality,
			State:      address.Region,
			PostalCode: address.PostalCode,
			Country:    address.Country,
		}

		if importKind(address.Params.Types(), []string{"HOME", "WORK"}, "WORK") == "HOME" {
			if record.Addresses.Home == nil {
				record.Addresses.Home = imported
			}
		} else if record.Addresses.Work == nil {
			record.Addresses.Work = imported
		}
	}

	if urls := card.Values(govcard.FieldURL); len(urls) > 0 {
		record.Website = urls[0]
	}

	for _, field := range card["X-SOCIALPROFILE"] {
		types := field.Params.Types()
		if len(types) == 0 || field.Value == "" {
			continue
		}
		if record.Social == nil {
			record.Social = make(map[string]string)
		}
		record.Social[strings.ToLower(types[0])] = field.Value
	}

	if bday := card.Value(govcard.FieldBirthday); bday != "" {
		if birthday, err := ParseDate(bday); err == nil {
			record.Birthday = birthday
		}
	}

	if photo := card.Get(govcard.FieldPhoto); photo != nil && !strings.HasPrefix(photo.Value, "http") {
		data, mediaType := StripDataURI(photo.Value)
		imageType := importImageType(photo.Params.Get(govcard.ParamType), mediaType)
		if data != "" {
			record.Photo = &Media{Data: data, Type: imageType}
		}
	}

	return record
}

var (
	knownPhoneKeys = []string{"CELL", "WORK", "HOME", "FAX", "PAGER"}
	knownEmailKeys = []string{"WORK", "HOME"}
)

// importKind picks the first TYPE value that is a known kind. Third-party
// exports often mix in VOICE, INTERNET or PREF which carry no kind.
func importKind(types []string, known []string, fallback string) string {
	for _, t := range types {
		t = strings.ToUpper(t)
		for _, k := range known {
			if t == k {
				return k
			}
		}
	}
	return fallback
}

// importImageType turns the TYPE param or data URI media type of a photo
// ("image/jpeg", "jpeg", "JPEG") into the form Encode writes. Values that
// still cannot go into a TYPE param yield "", which encodes as JPEG.
func importImageType(declared, mediaType string) string {
	for _, value := range []string{declared, mediaType} {
		value = strings.ToUpper(strings.TrimSpace(value))
		value = strings.TrimPrefix(value, "IMAGE/")
		if value != "" && kindPattern.MatchString(value) {
			return value
		}
	}
	return ""
}
