package vcard

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Decoder parses vCards written by Encode, plus mildly hand-edited
// variations of them. It holds no state besides its logger and is safe for
// concurrent use.
type Decoder struct {
	logg *zap.SugaredLogger
}

var defaultDecoder = NewDecoder(nil)

// NewDecoder returns a Decoder that reports skipped lines to logg. A nil
// logger discards them.
func NewDecoder(logg *zap.SugaredLogger) *Decoder {
	if logg == nil {
		logg = zap.NewNop().Sugar()
	}
	return &Decoder{logg: logg}
}

// Decode parses text with a Decoder that does not log.
func Decode(text string) (*ContactRecord, error) {
	return defaultDecoder.Decode(text)
}

type property struct {
	name   string
	params map[string][]string
	value  string
}

func (p *property) param(name string) string {
	if values := p.params[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// Decode turns a vCard text blob back into a ContactRecord. Text that does
// not start with BEGIN:VCARD and end with END:VCARD fails with
// ErrMalformedVCard. Lines without a ':' and unknown properties are skipped.
func (d *Decoder) Decode(text string) (*ContactRecord, error) {
	lines := logicalLines(text)
	if len(lines) < 2 {
		return nil, errors.Wrap(ErrMalformedVCard, "missing BEGIN:VCARD/END:VCARD")
	}

	if !strings.EqualFold(strings.TrimSpace(lines[0]), beginLine) {
		return nil, errors.Wrapf(ErrMalformedVCard, "expected %s, got %q", beginLine, lines[0])
	}

	if !strings.EqualFold(strings.TrimSpace(lines[len(lines)-1]), endLine) {
		return nil, errors.Wrapf(ErrMalformedVCard, "expected %s, got %q", endLine, lines[len(lines)-1])
	}

	record := &ContactRecord{}
	for i, line := range lines[1 : len(lines)-1] {
		prop, ok := parseLine(line)
		if !ok {
			d.logg.Warnf("vcard: skipping line %d without a property separator: %q", i+2, line)
			continue
		}

		d.apply(record, prop)
	}

	return record, nil
}

func (d *Decoder) apply(record *ContactRecord, prop *property) {
	switch prop.name {
	case "N":
		parts := structuredComponents(prop.value, 5)
		record.LastName = parts[0]
		record.FirstName = parts[1]
		record.MiddleName = parts[2]
		record.NamePrefix = parts[3]
		record.NameSuffix = parts[4]
	case "ORG":
		record.Organization = unescapeText(prop.value)
	case "TITLE":
		record.Title = unescapeText(prop.value)
	case "ROLE":
		record.Role = unescapeText(prop.value)
	case "NOTE":
		record.Notes = unescapeText(prop.value)
	case "URL":
		record.Website = prop.value
	case "BDAY":
		birthday, err := ParseDate(prop.value)
		if err != nil {
			d.logg.Warnf("vcard: skipping BDAY: %v", err)
			return
		}
		record.Birthday = birthday
	case "EMAIL":
		if prop.value == "" {
			d.logg.Warnf("vcard: skipping EMAIL without an address")
			return
		}
		record.Emails = append(record.Emails, Email{
			Address: unescapeText(prop.value),
			Kind:    emailKind(prop.param("TYPE")),
		})
	case "TEL":
		if prop.value == "" {
			d.logg.Warnf("vcard: skipping TEL without a number")
			return
		}
		record.Phones = append(record.Phones, Phone{
			Number: unescapeText(prop.value),
			Kind:   phoneKind(prop.param("TYPE")),
		})
	case "ADR":
		parts := structuredComponents(prop.value, 7)
		address := &Address{
			Street:     parts[2],
			City:       parts[3],
			State:      parts[4],
			PostalCode: parts[5],
			Country:    parts[6],
		}

		switch strings.ToUpper(prop.param("TYPE")) {
		case "HOME":
			record.Addresses.Home = address
		case "WORK", "":
			record.Addresses.Work = address
		default:
			d.logg.Warnf("vcard: skipping ADR with unsupported type %q", prop.param("TYPE"))
		}
	case "X-SOCIALPROFILE":
		platform := strings.ToLower(prop.param("TYPE"))
		if platform == "" {
			d.logg.Warnf("vcard: skipping X-SOCIALPROFILE without a TYPE")
			return
		}
		if record.Social == nil {
			record.Social = make(map[string]string)
		}
		record.Social[platform] = prop.value
	case "PHOTO":
		record.Photo = &Media{Data: prop.value, Type: prop.param("TYPE")}
	}
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

// logicalLines splits text on LF (dropping a trailing CR), unfolds
// continuation lines and discards blank ones.
func logicalLines(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSuffix(raw, "\r")

		if (strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += raw[1:]
			continue
		}

		if strings.TrimSpace(raw) == "" {
			continue
		}
		lines = append(lines, raw)
	}
	return lines
}

// parseLine splits a content line on its first unescaped ':' into the
// property name, its parameters and the raw (still escaped) value.
func parseLine(line string) (*property, bool) {
	idx := indexUnescaped(line, ':')
	if idx <= 0 {
		return nil, false
	}

	keyParts := strings.Split(line[:idx], ";")
	name := strings.ToUpper(strings.TrimSpace(keyParts[0]))
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		name = name[dot+1:]
	}

	prop := &property{
		name:   name,
		params: make(map[string][]string),
		value:  line[idx+1:],
	}

	for _, param := range keyParts[1:] {
		key, value := "TYPE", param
		if eq := strings.IndexByte(param, '='); eq >= 0 {
			key, value = strings.ToUpper(strings.TrimSpace(param[:eq])), param[eq+1:]
		}

		for _, v := range strings.Split(value, ",") {
			if v = strings.Trim(strings.TrimSpace(v), `"`); v != "" {
				prop.params[key] = append(prop.params[key], v)
			}
		}
	}

	return prop, true
}

func phoneKind(value string) PhoneKind {
	if value == "" {
		return PhoneCell
	}
	if kind, ok := knownPhoneKinds[strings.ToUpper(value)]; ok {
		return kind
	}
	return PhoneKind(value)
}

func emailKind(value string) EmailKind {
	if value == "" {
		return EmailWork
	}
	if kind, ok := knownEmailKinds[strings.ToUpper(value)]; ok {
		return kind
	}
	return EmailKind(value)
}
