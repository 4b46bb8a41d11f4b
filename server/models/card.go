package models

import (
	"errors"

	"github.com/Daskott/tapcard/vcard"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Card is a user's business card. VCard caches the encoded record so public
// downloads & QR codes don't need to encode on every request.
type Card struct {
	BaseModel
	UserID uint   `json:"user_id" gorm:"not null;index"`
	Slug   string `json:"slug" gorm:"not null;uniqueIndex"`
	Label  string `json:"label"`
	Record Record `json:"record" gorm:"not null"`
	VCard  string `json:"-" gorm:"column:vcard;type:text"`
}

// SetRecord encodes record and keeps both forms on the card.
func (card *Card) SetRecord(record *vcard.ContactRecord) error {
	text, err := vcard.Encode(record)
	if err != nil {
		return err
	}

	card.Record = Record(*record)
	card.VCard = text
	return nil
}

// VCardText returns the cached vCard, encoding the record when the cache is empty.
func (card *Card) VCardText() (string, error) {
	if card.VCard != "" {
		return card.VCard, nil
	}
	return vcard.Encode(card.Record.ContactRecord())
}

func (card *Card) Update(label string, record *vcard.ContactRecord) error {
	err := card.SetRecord(record)
	if err != nil {
		return err
	}
	card.Label = label

	return db.Model(card).Updates(map[string]interface{}{
		"label":  card.Label,
		"record": card.Record,
		"vcard":  card.VCard,
	}).Error
}

func CreateCard(userID uint, label string, record *vcard.ContactRecord) (*Card, error) {
	card := &Card{
		UserID: userID,
		Slug:   uuid.NewString(),
		Label:  label,
	}

	err := card.SetRecord(record)
	if err != nil {
		return nil, err
	}

	err = db.Create(card).Error
	if err != nil {
		return nil, err
	}

	return card, nil
}

func FindCardBySlug(slug string) (*Card, error) {
	card := Card{}
	err := db.First(&card, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}

	return &card, nil
}

func FindUserCard(userID, cardID interface{}) (*Card, error) {
	card := Card{}
	err := db.Scopes(ownedBy(userID)).First(&card, "id = ?", cardID).Error
	if err != nil {
		return nil, err
	}

	return &card, nil
}

func FetchUserCards(userID interface{}, page int) ([]Card, *Paging, error) {
	var total int64
	cards := []Card{}

	err := db.Model(&Card{}).Scopes(ownedBy(userID)).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(ownedBy(userID), paginate(page, DEFAULT_PAGE_SIZE)).
		Order("id desc").Find(&cards).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	return cards, newPaging(int64(page), DEFAULT_PAGE_SIZE, total), nil
}

// DeleteUserCard returns gorm.ErrRecordNotFound when the user owns no such card.
func DeleteUserCard(userID, cardID interface{}) error {
	res := db.Scopes(ownedBy(userID)).Delete(&Card{}, cardID)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func CountCards() (int64, error) {
	var total int64
	err := db.Model(&Card{}).Count(&total).Error
	return total, err
}
