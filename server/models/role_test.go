package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedRoles(t *testing.T) {
	InitializeTestDb()

	// seeding again must not duplicate roles
	require.Nil(t, seedRoles(db))

	var count int64
	require.Nil(t, db.Model(&Role{}).Count(&count).Error)
	assert.Equal(t, int64(len(roleNames)), count)

	for _, name := range roleNames {
		role, err := FindRole(name)
		require.Nil(t, err, name)
		assert.Equal(t, name, role.Name)
	}

	_, err := FindRole("superuser")
	assert.NotNil(t, err)
}

func TestRoleForNewUser(t *testing.T) {
	InitializeTestDb()

	role, err := roleForNewUser(db)
	require.Nil(t, err)
	assert.Equal(t, ADMIN_USER_ROLE, role.Name)

	require.Nil(t, CreateUser(newTestUser("ada@example.com", "+15550001000")))

	role, err = roleForNewUser(db)
	require.Nil(t, err)
	assert.Equal(t, BASIC_USER_ROLE, role.Name)
}
