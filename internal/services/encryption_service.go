package services

import (
	"habbitgold/internal/crypto"
	"habbitgold/internal/models"
)

// EncryptionService wraps the crypto service with domain-specific methods.
// Payment method labels carry masked card numbers and payout addresses, so
// they are the one profile field encrypted at rest.
type EncryptionService struct {
	crypto *crypto.EncryptionService
}

func NewEncryptionService(key []byte) (*EncryptionService, error) {
	cryptoSvc, err := crypto.NewEncryptionService(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{crypto: cryptoSvc}, nil
}

// EncryptUser encrypts sensitive user fields before storing. The methods
// slice is replaced, not mutated, so the caller's copy stays readable.
func (s *EncryptionService) EncryptUser(user *models.User) error {
	methods := make([]models.PaymentMethod, len(user.PaymentMethods))
	copy(methods, user.PaymentMethods)
	for i := range methods {
		encrypted, err := s.crypto.Encrypt(methods[i].Label)
		if err != nil {
			return err
		}
		methods[i].Label = encrypted
	}
	user.PaymentMethods = methods
	return nil
}

// DecryptUser decrypts sensitive user fields after retrieval.
func (s *EncryptionService) DecryptUser(user *models.User) error {
	methods := make([]models.PaymentMethod, len(user.PaymentMethods))
	copy(methods, user.PaymentMethods)
	for i := range methods {
		decrypted, err := s.crypto.Decrypt(methods[i].Label)
		if err != nil {
			return err
		}
		methods[i].Label = decrypted
	}
	user.PaymentMethods = methods
	return nil
}
