package store

import (
	"crypto/rand"
	"math/big"

	"github.com/gdg-garage/convention-booking/internal/models"
	"gorm.io/gorm"
)

const (
	codeAlphabet    = "abcdefghijklmnopqrstuvwxyz0123456789"
	codeLength      = 8
	maxCodeAttempts = 10
)

// GenerateCode returns a random booking code of lowercase letters and digits.
func GenerateCode() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	b := make([]byte, codeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeAlphabet[n.Int64()]
	}
	return string(b), nil
}

func codeTaken(tx *gorm.DB, code string) (bool, error) {
	var count int64
	err := tx.Model(&models.Booking{}).Unscoped().Where("code = ?", code).Count(&count).Error
	return count > 0, err
}

// uniqueCode draws codes until one is unused, giving up after maxCodeAttempts.
func uniqueCode(tx *gorm.DB, generate func() (string, error)) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := generate()
		if err != nil {
			return "", err
		}
		taken, err := codeTaken(tx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}
