package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/Daskott/tapcard/vcard"
)

// Record stores a vcard.ContactRecord in a single JSON text column.
type Record vcard.ContactRecord

func (r Record) Value() (driver.Value, error) {
	data, err := json.Marshal(vcard.ContactRecord(r))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (r *Record) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*r = Record{}
		return nil
	default:
		return fmt.Errorf("unable to scan %T into Record", value)
	}

	record := vcard.ContactRecord{}
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	*r = Record(record)
	return nil
}

func (Record) GormDataType() string {
	return "text"
}

// ContactRecord returns a copy of the stored record.
func (r Record) ContactRecord() *vcard.ContactRecord {
	record := vcard.ContactRecord(r)
	return &record
}
