package adapters

import (
	"fmt"

	"secretsanta/internal/activity/models"
	"secretsanta/internal/activity/ports"
)

// fieldSealer is what pkg/fieldcrypt.Cipher provides.
// Defined locally so the activity module does not depend on the cipher type.
type fieldSealer interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(sealed string) (string, error)
}

// ShippingCipher adapts a per-field cipher to ports.FieldCipher.
type ShippingCipher struct {
	sealer fieldSealer
}

var _ ports.FieldCipher = (*ShippingCipher)(nil)

func NewShippingCipher(sealer fieldSealer) *ShippingCipher {
	return &ShippingCipher{sealer: sealer}
}

func (c *ShippingCipher) EncryptShipping(plain models.Shipping) (models.EncryptedShipping, error) {
	var out models.EncryptedShipping
	var err error
	if out.RealName, err = c.sealer.Encrypt(plain.RealName); err != nil {
		return models.EncryptedShipping{}, fmt.Errorf("encrypt real name: %w", err)
	}
	if out.Phone, err = c.sealer.Encrypt(plain.Phone); err != nil {
		return models.EncryptedShipping{}, fmt.Errorf("encrypt phone: %w", err)
	}
	if out.Address, err = c.sealer.Encrypt(plain.Address); err != nil {
		return models.EncryptedShipping{}, fmt.Errorf("encrypt address: %w", err)
	}
	return out, nil
}

func (c *ShippingCipher) DecryptShipping(sealed models.EncryptedShipping) (models.Shipping, error) {
	var out models.Shipping
	var err error
	if out.RealName, err = c.sealer.Decrypt(sealed.RealName); err != nil {
		return models.Shipping{}, fmt.Errorf("decrypt real name: %w", err)
	}
	if out.Phone, err = c.sealer.Decrypt(sealed.Phone); err != nil {
		return models.Shipping{}, fmt.Errorf("decrypt phone: %w", err)
	}
	if out.Address, err = c.sealer.Decrypt(sealed.Address); err != nil {
		return models.Shipping{}, fmt.Errorf("decrypt address: %w", err)
	}
	return out, nil
}
