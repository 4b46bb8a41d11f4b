package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestUser(email, phoneNumber string) *User {
	return &User{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		PhoneNumber: phoneNumber,
		Email:       email,
		Password:    "s3cret",
	}
}

func TestCreateUser(t *testing.T) {
	InitializeTestDb()

	exists, err := AtLeastOneUserExists()
	require.Nil(t, err)
	assert.False(t, exists)

	first := newTestUser("ada@example.com", "+15550001000")
	require.Nil(t, CreateUser(first))
	assert.NotEqual(t, "s3cret", first.Password, "Password should be hashed")

	isAdmin, err := first.IsAdmin()
	require.Nil(t, err)
	assert.True(t, isAdmin, "The first user should be an admin")

	second := newTestUser("grace@example.com", "+15550002000")
	require.Nil(t, CreateUser(second))

	isAdmin, err = second.IsAdmin()
	require.Nil(t, err)
	assert.False(t, isAdmin, "Later users should be basic users")

	found, err := FindUserBy("email", "grace@example.com")
	require.Nil(t, err)
	assert.Equal(t, second.ID, found.ID)
	assert.Empty(t, found.Password, "Password should not be loaded")

	err = CreateUser(newTestUser("grace@example.com", "+15550003000"))
	assert.NotNil(t, err, "Emails should be unique")
}

func TestUpdateAndDeleteUser(t *testing.T) {
	InitializeTestDb()

	user := newTestUser("ada@example.com", "+15550001000")
	require.Nil(t, CreateUser(user))

	_, err := CreateCard(user.ID, "work", testRecord())
	require.Nil(t, err)

	err = user.Update(map[string]interface{}{"first_name": "Augusta", "password": "n3w"})
	require.Nil(t, err)

	withPassword, err := FindUserWithPassword("ada@example.com")
	require.Nil(t, err)
	assert.Equal(t, "Augusta", withPassword.FirstName)
	assert.NotEqual(t, "n3w", withPassword.Password)

	require.Nil(t, DeleteUser(user.ID))

	_, err = FindUserBy("id", user.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	cards, _, err := FetchUserCards(user.ID, 1)
	require.Nil(t, err)
	assert.Empty(t, cards, "Cards should be removed with their owner")
}
