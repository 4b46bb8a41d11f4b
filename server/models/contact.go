package models

import (
	"errors"

	"github.com/Daskott/tapcard/vcard"
	"gorm.io/gorm"
)

const (
	IMPORTED_CONTACT = "import"
	SAVED_CONTACT    = "card"
)

// MAX_EXPORTED_CONTACTS caps how many contacts go into one exported address book.
const MAX_EXPORTED_CONTACTS = 5000

// Contact is an entry in a user's address book, either imported from a
// third-party .vcf file or saved from someone else's card.
type Contact struct {
	BaseModel
	UserID uint   `json:"user_id" gorm:"not null;index"`
	Source string `json:"source"`
	Record Record `json:"record" gorm:"not null"`
}

// AddContacts saves records to the user's address book in one batch.
func (user *User) AddContacts(records []vcard.ContactRecord, source string) ([]Contact, error) {
	contacts := make([]Contact, 0, len(records))
	for _, record := range records {
		contacts = append(contacts, Contact{
			UserID: user.ID,
			Source: source,
			Record: Record(record.Portable()),
		})
	}

	if len(contacts) == 0 {
		return contacts, nil
	}

	err := db.Create(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

func FetchUserContacts(userID interface{}, page int) ([]Contact, *Paging, error) {
	var total int64
	contacts := []Contact{}

	err := db.Model(&Contact{}).Scopes(ownedBy(userID)).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(ownedBy(userID), paginate(page, DEFAULT_PAGE_SIZE)).
		Order("id desc").Find(&contacts).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	return contacts, newPaging(int64(page), DEFAULT_PAGE_SIZE, total), nil
}

// AllUserContacts returns the user's contacts oldest first.
func AllUserContacts(userID interface{}) ([]Contact, error) {
	contacts := []Contact{}
	err := db.Scopes(ownedBy(userID)).Order("id asc").Limit(MAX_EXPORTED_CONTACTS).Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

// DeleteUserContact returns gorm.ErrRecordNotFound when the user owns no such contact.
func DeleteUserContact(userID, contactID interface{}) error {
	res := db.Scopes(ownedBy(userID)).Delete(&Contact{}, contactID)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
