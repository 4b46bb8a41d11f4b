package models

import (
	"gorm.io/gorm"
)

const (
	ADMIN_USER_ROLE = "admin"
	BASIC_USER_ROLE = "basic"
)

// Role decides what a user may reach. Admins manage users & the job queue
// but never see another user's cards or contacts.
type Role struct {
	BaseModel
	Name  string `json:"name" gorm:"not null;unique"`
	Users []User `json:"users,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

var roleNames = []string{ADMIN_USER_ROLE, BASIC_USER_ROLE}

func FindRole(name string) (*Role, error) {
	return findRole(db, name)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func findRole(tx *gorm.DB, name string) (*Role, error) {
	role := Role{}
	err := tx.Select("id", "name").First(&role, "name = ?", name).Error
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// seedRoles inserts whichever role is missing, so it can run on every start.
func seedRoles(tx *gorm.DB) error {
	for _, name := range roleNames {
		err := tx.Where(Role{Name: name}).FirstOrCreate(&Role{}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// roleForNewUser is the admin role for the very first account & the basic
// role for everyone after.
func roleForNewUser(tx *gorm.DB) (*Role, error) {
	var users int64
	err := tx.Model(&User{}).Count(&users).Error
	if err != nil {
		return nil, err
	}

	if users == 0 {
		return findRole(tx, ADMIN_USER_ROLE)
	}
	return findRole(tx, BASIC_USER_ROLE)
}
