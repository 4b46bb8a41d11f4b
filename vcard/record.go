package vcard

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type PhoneKind string

const (
	PhoneCell  PhoneKind = "CELL"
	PhoneWork  PhoneKind = "WORK"
	PhoneHome  PhoneKind = "HOME"
	PhoneFax   PhoneKind = "FAX"
	PhonePager PhoneKind = "PAGER"
)

var knownPhoneKinds = map[string]PhoneKind{
	"CELL":  PhoneCell,
	"WORK":  PhoneWork,
	"HOME":  PhoneHome,
	"FAX":   PhoneFax,
	"PAGER": PhonePager,
}

type EmailKind string

const (
	EmailWork EmailKind = "WORK"
	EmailHome EmailKind = "HOME"
)

var knownEmailKinds = map[string]EmailKind{
	"WORK": EmailWork,
	"HOME": EmailHome,
}

// Social platforms are emitted in this order, any other platform key
// found in a record follows in lexical order.
const (
	Linkedin  = "linkedin"
	Twitter   = "twitter"
	Facebook  = "facebook"
	Instagram = "instagram"
	Youtube   = "youtube"
	Github    = "github"
)

var socialPlatformOrder = []string{Linkedin, Twitter, Facebook, Instagram, Youtube, Github}

type Phone struct {
	Number string    `json:"number" validate:"required"`
	Kind   PhoneKind `json:"kind" validate:"required,vcard_kind"`
}

type Email struct {
	Address string    `json:"address" validate:"required,email"`
	Kind    EmailKind `json:"kind" validate:"required,vcard_kind"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	District   string `json:"district,omitempty"`
}

// IsZero reports whether none of the address sub-fields carry a value.
func (a *Address) IsZero() bool {
	return a == nil || (a.Street == "" && a.City == "" && a.State == "" &&
		a.PostalCode == "" && a.Country == "" && a.District == "")
}

type Addresses struct {
	Work *Address `json:"work,omitempty"`
	Home *Address `json:"home,omitempty"`
}

// Media is an image already available as a base64 payload. Data may still
// carry a "data:image/...;base64," prefix, it is removed on encode.
type Media struct {
	Data string `json:"data" validate:"required,image_payload"`
	Type string `json:"type,omitempty"`
}

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Year: year, Month: month, Day: day}
}

// ParseDate accepts YYYY-MM-DD and the basic YYYYMMDD form.
func ParseDate(value string) (*Date, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{"2006-01-02", "20060102"} {
		t, err := time.Parse(layout, value)
		if err == nil {
			return &Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
		}
	}

	return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}

	*d = *parsed
	return nil
}

// ContactRecord is the structured form of one contact. It is a transient
// projection built right before encoding and is never mutated by this package.
type ContactRecord struct {
	FirstName  string `json:"first_name" validate:"required_without=LastName"`
	LastName   string `json:"last_name" validate:"required_without=FirstName"`
	MiddleName string `json:"middle_name"`
	NamePrefix string `json:"name_prefix,omitempty"`
	NameSuffix string `json:"name_suffix,omitempty"`

	Organization string `json:"organization,omitempty"`
	Title        string `json:"title,omitempty"`
	Role         string `json:"role,omitempty"`

	Phones    []Phone   `json:"phones,omitempty" validate:"dive"`
	Emails    []Email   `json:"emails,omitempty" validate:"dive"`
	Addresses Addresses `json:"addresses"`

	Website string            `json:"website,omitempty" validate:"omitempty,url"`
	Social  map[string]string `json:"social,omitempty" validate:"dive,url"`

	Photo *Media `json:"photo,omitempty"`
	Logo  *Media `json:"logo,omitempty"`

	Birthday *Date  `json:"birthday,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// FullName is the FN value: first, middle and last name joined by a
// single space with empty parts left out.
func (r *ContactRecord) FullName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{r.FirstName, r.MiddleName, r.LastName} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

// Portable returns a copy of the record without the application specific
// logo, which never goes into a downloadable vCard.
func (r ContactRecord) Portable() ContactRecord {
	r.Logo = nil
	return r
}
