package models

import (
	"testing"
	"time"

	"github.com/Daskott/tapcard/vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testRecord() *vcard.ContactRecord {
	return &vcard.ContactRecord{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Organization: "Analytical Engines",
		Phones:       []vcard.Phone{{Number: "555-1000", Kind: vcard.PhoneCell}},
		Addresses: vcard.Addresses{
			Work: &vcard.Address{City: "London"},
		},
		Social:   map[string]string{vcard.Github: "https://github.com/ada"},
		Birthday: vcard.NewDate(1815, time.December, 10),
		Logo:     &vcard.Media{Data: "R0lGODlh", Type: "GIF"},
		Notes:    "Pioneer;\nmathematician",
	}
}

func TestCreateCard(t *testing.T) {
	InitializeTestDb()

	card, err := CreateCard(1, "work", testRecord())
	require.Nil(t, err)
	assert.NotEmpty(t, card.Slug)
	assert.Contains(t, card.VCard, "N:Lovelace;Ada;;;\n")

	found, err := FindCardBySlug(card.Slug)
	require.Nil(t, err)
	assert.Equal(t, testRecord(), found.Record.ContactRecord(), "The record should survive the JSON column")
	assert.Equal(t, card.VCard, found.VCard)

	text, err := found.VCardText()
	require.Nil(t, err)
	assert.Equal(t, card.VCard, text)
}

func TestCreateCardInvalidRecord(t *testing.T) {
	InitializeTestDb()

	record := testRecord()
	record.Phones[0].Kind = "not a kind"

	_, err := CreateCard(1, "work", record)
	assert.ErrorIs(t, err, vcard.ErrInvalidArgument)
}

func TestUpdateCard(t *testing.T) {
	InitializeTestDb()

	card, err := CreateCard(1, "work", testRecord())
	require.Nil(t, err)

	record := testRecord()
	record.Title = "Countess"
	require.Nil(t, card.Update("personal", record))

	found, err := FindUserCard(1, card.ID)
	require.Nil(t, err)
	assert.Equal(t, "personal", found.Label)
	assert.Equal(t, "Countess", found.Record.Title)
	assert.Contains(t, found.VCard, "TITLE:Countess\n")

	_, err = FindUserCard(2, card.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "Should not find another user's card")
}

func TestFetchAndDeleteUserCards(t *testing.T) {
	InitializeTestDb()

	for i := 0; i < DEFAULT_PAGE_SIZE+1; i++ {
		_, err := CreateCard(1, "work", testRecord())
		require.Nil(t, err)
	}
	other, err := CreateCard(2, "work", testRecord())
	require.Nil(t, err)

	cards, paging, err := FetchUserCards(1, 1)
	require.Nil(t, err)
	assert.Len(t, cards, DEFAULT_PAGE_SIZE)
	assert.Equal(t, &Paging{Total: DEFAULT_PAGE_SIZE + 1, Page: 1, Pages: 2}, paging)

	cards, _, err = FetchUserCards(1, 2)
	require.Nil(t, err)
	assert.Len(t, cards, 1)

	assert.ErrorIs(t, DeleteUserCard(1, other.ID), gorm.ErrRecordNotFound)
	assert.Nil(t, DeleteUserCard(2, other.ID))

	total, err := CountCards()
	require.Nil(t, err)
	assert.Equal(t, int64(DEFAULT_PAGE_SIZE+1), total)
}
