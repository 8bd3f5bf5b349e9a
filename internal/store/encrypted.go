package store

import (
	"context"

	"habbitgold/internal/models"
)

// ProfileCipher encrypts and decrypts the sensitive fields of a stored
// profile. Satisfied by services.EncryptionService.
type ProfileCipher interface {
	EncryptUser(user *models.User) error
	DecryptUser(user *models.User) error
}

// EncryptedStore wraps a backend so payment method labels are encrypted
// before the profile record is written and decrypted on read. The other
// records pass through untouched.
type EncryptedStore struct {
	Store
	cipher ProfileCipher
}

func NewEncrypted(inner Store, cipher ProfileCipher) *EncryptedStore {
	return &EncryptedStore{Store: inner, cipher: cipher}
}

func (s *EncryptedStore) GetUser(ctx context.Context) (models.User, error) {
	user, err := s.Store.GetUser(ctx)
	if err != nil {
		return models.User{}, err
	}
	if err := s.cipher.DecryptUser(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *EncryptedStore) SaveUser(ctx context.Context, user models.User) error {
	if err := s.cipher.EncryptUser(&user); err != nil {
		return err
	}
	return s.Store.SaveUser(ctx, user)
}
