package models

import (
	"errors"
	"fmt"

	"github.com/Daskott/tapcard/server/auth"
	"gorm.io/gorm"
)

var (
	allFieldsExceptPassword = []string{"id",
		"first_name",
		"last_name",
		"phone_number",
		"email",
		"role_id",
		"created_at",
		"updated_at",
	}

	updatableFields = []string{"first_name",
		"last_name",
		"phone_number",
		"password",
	}
)

type User struct {
	BaseModel
	FirstName   string    `json:"first_name" validate:"required"`
	LastName    string    `json:"last_name" validate:"required"`
	PhoneNumber string    `json:"phone_number" validate:"required,phone_number" gorm:"not null;unique"`
	Email       string    `json:"email" validate:"required,email" gorm:"not null;unique"`
	Password    string    `json:"password,omitempty" validate:"required,password" gorm:"not null"`
	RoleID      uint      `json:"role_id" gorm:"null"`
	Cards       []Card    `json:"cards,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Contacts    []Contact `json:"contacts,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (user *User) Update(data map[string]interface{}) error {
	if data["password"] != nil {
		passwordHash, err := auth.HashPassword(fmt.Sprint(data["password"]))
		if err != nil {
			return err
		}
		data["password"] = passwordHash
	}

	return db.Model(&User{}).Where("id = ?", user.ID).Select(updatableFields).Updates(data).Error
}

func (user *User) IsAdmin() (bool, error) {
	if user.RoleID == 0 {
		return false, nil
	}

	adminRole, err := FindRole(ADMIN_USER_ROLE)
	if err != nil {
		return false, err
	}

	return adminRole.ID == user.RoleID, nil
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindUserWithPassword loads the user for email including the password hash.
func FindUserWithPassword(email string) (*User, error) {
	user := User{}
	err := db.First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// CreateUser hashes the user's password and stores it. The very first user
// becomes an admin, everyone after that is a basic user.
func CreateUser(user *User) error {
	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash

	return db.Transaction(func(tx *gorm.DB) error {
		role, err := roleForNewUser(tx)
		if err != nil {
			return err
		}
		user.RoleID = role.ID

		return tx.Create(user).Error
	})
}

// DeleteUser removes the user along with their cards & contacts.
func DeleteUser(id interface{}) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&Card{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&Contact{}).Error; err != nil {
			return err
		}

		return tx.Delete(&User{}, id).Error
	})
}

func AtLeastOneUserExists() (bool, error) {
	err := db.First(&User{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
