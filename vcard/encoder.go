package vcard

import (
	"encoding/base64"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const (
	lineBreak    = "\n"
	beginLine    = "BEGIN:VCARD"
	endLine      = "END:VCARD"
	versionLine  = "VERSION:3.0"
	defaultImage = "JPEG"
	MimeType     = "text/vcard"
)

var (
	kindPattern     = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	dataURIPattern  = regexp.MustCompile(`^data:([A-Za-z0-9.+-]+/[A-Za-z0-9.+-]+)?(;[^,]*)?,`)
	fileNameUnsafe  = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	base64Stripping = strings.NewReplacer("\r", "", "\n", "", " ", "", "\t", "")
)

// Encode renders record as a vCard 3.0 text blob, one property per line in a
// fixed order, every line terminated by "\n". Text values are escaped, URLs
// and the base64 photo payload are written verbatim. The logo is never written.
func Encode(record *ContactRecord) (string, error) {
	if record == nil {
		return "", errors.Wrap(ErrInvalidArgument, "record is nil")
	}

	if err := checkRecord(record); err != nil {
		return "", err
	}

	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(key)
		b.WriteByte(':')
		b.WriteString(value)
		b.WriteString(lineBreak)
	}

	b.WriteString(beginLine + lineBreak)
	b.WriteString(versionLine + lineBreak)

	line("N", structuredValue(record.LastName, record.FirstName, record.MiddleName, record.NamePrefix, record.NameSuffix))
	line("FN", escapeText(record.FullName()))

	if record.Organization != "" {
		line("ORG", escapeText(record.Organization))
	}
	if record.Title != "" {
		line("TITLE", escapeText(record.Title))
	}
	if record.Role != "" {
		line("ROLE", escapeText(record.Role))
	}

	for _, email := range record.Emails {
		line("EMAIL;TYPE="+string(email.Kind), escapeText(email.Address))
	}

	for _, phone := range record.Phones {
		line("TEL;TYPE="+string(phone.Kind), escapeText(phone.Number))
	}

	if !record.Addresses.Work.IsZero() {
		line("ADR;TYPE=WORK", addressValue(record.Addresses.Work))
	}
	if !record.Addresses.Home.IsZero() {
		line("ADR;TYPE=HOME", addressValue(record.Addresses.Home))
	}

	if record.Website != "" {
		line("URL", record.Website)
	}

	social := socialProfiles(record.Social)
	for _, platform := range socialPlatforms(social) {
		line("X-SOCIALPROFILE;TYPE="+platform, social[platform])
	}

	if record.Birthday != nil {
		line("BDAY", record.Birthday.String())
	}

	if record.Notes != "" {
		line("NOTE", escapeText(record.Notes))
	}

	if record.Photo != nil && record.Photo.Data != "" {
		data, imageType := photoPayload(record.Photo)
		line("PHOTO;ENCODING=BASE64;TYPE="+imageType, data)
	}

	b.WriteString(endLine + lineBreak)

	return b.String(), nil
}

// FileName is the download name for a record: <firstName>_<lastName>.vcf.
func FileName(record *ContactRecord) string {
	if record == nil {
		return "contact.vcf"
	}

	parts := make([]string, 0, 2)
	for _, part := range []string{record.FirstName, record.LastName} {
		part = strings.Trim(fileNameUnsafe.ReplaceAllString(part, "_"), "_")
		if part != "" {
			parts = append(parts, part)
		}
	}

	if len(parts) == 0 {
		return "contact.vcf"
	}
	return strings.Join(parts, "_") + ".vcf"
}

// StripDataURI removes a "data:<media-type>;base64," prefix from payload and
// returns the bare payload along with the media type found, if any.
func StripDataURI(payload string) (string, string) {
	payload = strings.TrimSpace(payload)

	loc := dataURIPattern.FindStringSubmatchIndex(payload)
	if loc == nil {
		return payload, ""
	}

	mediaType := ""
	if loc[2] >= 0 {
		mediaType = payload[loc[2]:loc[3]]
	}
	return payload[loc[1]:], mediaType
}

// ValidImagePayload reports whether payload, once stripped of a data URI
// prefix, is well-formed standard base64.
func ValidImagePayload(payload string) bool {
	data, _ := StripDataURI(payload)
	if data == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(base64Stripping.Replace(data))
	return err == nil
}

// ValidKind reports whether kind can be written as a TYPE parameter value.
func ValidKind(kind string) bool {
	return kindPattern.MatchString(kind)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func checkRecord(record *ContactRecord) error {
	for i, phone := range record.Phones {
		if strings.TrimSpace(phone.Number) == "" {
			return errors.Wrapf(ErrInvalidArgument, "phone %d: number is empty", i)
		}
		if !kindPattern.MatchString(string(phone.Kind)) {
			return errors.Wrapf(ErrInvalidArgument, "phone %d: invalid kind %q", i, phone.Kind)
		}
	}

	for i, email := range record.Emails {
		if strings.TrimSpace(email.Address) == "" {
			return errors.Wrapf(ErrInvalidArgument, "email %d: address is empty", i)
		}
		if !kindPattern.MatchString(string(email.Kind)) {
			return errors.Wrapf(ErrInvalidArgument, "email %d: invalid kind %q", i, email.Kind)
		}
	}

	platforms := make(map[string]string, len(record.Social))
	for platform, url := range record.Social {
		if !kindPattern.MatchString(platform) {
			return errors.Wrapf(ErrInvalidArgument, "social profile: invalid platform %q", platform)
		}
		if url == "" {
			continue
		}
		key := strings.ToLower(platform)
		if other, ok := platforms[key]; ok {
			return errors.Wrapf(ErrInvalidArgument, "social profile: platforms %q and %q collide", other, platform)
		}
		platforms[key] = platform
	}

	if record.Photo != nil && record.Photo.Data != "" {
		if !ValidImagePayload(record.Photo.Data) {
			return errors.Wrap(ErrInvalidArgument, "photo: payload is not valid base64")
		}
		if record.Photo.Type != "" && !kindPattern.MatchString(record.Photo.Type) {
			return errors.Wrapf(ErrInvalidArgument, "photo: invalid type %q", record.Photo.Type)
		}
	}

	return nil
}

// addressValue always yields 7 positions, the post office box and extended
// address are never populated.
func addressValue(address *Address) string {
	return structuredValue("", "", address.Street, address.City, address.State, address.PostalCode, address.Country)
}

// socialProfiles lower-cases the platform keys, the form Decode gives them back in.
// Entries without a URL are left out.
func socialProfiles(social map[string]string) map[string]string {
	profiles := make(map[string]string, len(social))
	for platform, url := range social {
		if url != "" {
			profiles[strings.ToLower(platform)] = url
		}
	}
	return profiles
}

func socialPlatforms(social map[string]string) []string {
	platforms := make([]string, 0, len(social))
	known := make(map[string]bool, len(socialPlatformOrder))

	for _, platform := range socialPlatformOrder {
		known[platform] = true
		if social[platform] != "" {
			platforms = append(platforms, platform)
		}
	}

	var extra []string
	for platform, url := range social {
		if !known[platform] && url != "" {
			extra = append(extra, platform)
		}
	}
	sort.Strings(extra)

	return append(platforms, extra...)
}

// photoPayload drops any data URI prefix and the line breaks of wrapped
// base64, so the payload stays on the PHOTO line.
func photoPayload(photo *Media) (string, string) {
	data, mediaType := StripDataURI(photo.Data)
	data = base64Stripping.Replace(data)

	imageType := photo.Type
	if imageType == "" && strings.HasPrefix(mediaType, "image/") {
		imageType = strings.ToUpper(strings.TrimPrefix(mediaType, "image/"))
	}
	if imageType == "" {
		imageType = defaultImage
	}

	return data, imageType
}
