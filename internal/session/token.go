package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adboardapp/adboard/internal/common"
	"github.com/adboardapp/adboard/internal/models"
)

// sessionClaims is the payload of the persisted session blob: the identity
// fields of the logged-in user plus the standard claims.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Phone  string `json:"phone"`
	Name   string `json:"name"`
}

// seal serializes the user into a signed HS256 token. The signature lets
// Restore distinguish a corrupt or tampered blob from a valid one.
func seal(user *models.User, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		UserID: user.ID,
		Phone:  user.Phone,
		Name:   user.Name,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// open parses and verifies a persisted session blob. Any failure (bad
// signature, malformed token, missing identity) is reported as
// common.ErrStateCorrupt so the caller can discard the blob.
func open(blob string, secretKey []byte) (*models.User, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(blob, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrStateCorrupt, err)
	}

	if !token.Valid || claims.UserID == "" || claims.Phone == "" {
		return nil, common.ErrStateCorrupt
	}

	return &models.User{
		ID:    claims.UserID,
		Phone: claims.Phone,
		Name:  claims.Name,
	}, nil
}
