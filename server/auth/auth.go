package auth

import (
	"fmt"
	"time"

	"github.com/Daskott/tapcard/server/auth/key"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

const TOKEN_TTL = 24 * time.Hour

// PasswordHashCost is the bcrypt cost used for new password hashes.
var PasswordHashCost = 14

type TapcardTokenClaims struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
	jwt.StandardClaims
}

func NewTokenClaims(userID uint, firstName, lastName string, isAdmin bool) TapcardTokenClaims {
	now := time.Now()
	return TapcardTokenClaims{
		FirstName: firstName,
		LastName:  lastName,
		IsAdmin:   isAdmin,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(userID),
			Issuer:    "tapcard",
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TOKEN_TTL).Unix(),
		},
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func EncodeJWT(claims TapcardTokenClaims, keyPair *key.KeyPair) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = keyPair.Kid

	return token.SignedString(keyPair.PrivateKey)
}

func DecodeJWT(tokenString string, keyPair *key.KeyPair) (*TapcardTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TapcardTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return keyPair.PublicKey, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid jwt: %v", err)
	}

	tokenClaims, ok := token.Claims.(*TapcardTokenClaims)
	if !ok {
		return nil, fmt.Errorf("unable to assert token.Claims to TapcardTokenClaims")
	}

	return tokenClaims, nil
}
