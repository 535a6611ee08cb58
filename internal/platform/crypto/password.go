package crypto

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrPasswordNoUpper       = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower       = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber      = errors.New("password must contain at least one number")
	ErrPasswordNoSpecialChar = errors.New("password must contain at least one special character")
)

var (
	upperRe   = regexp.MustCompile(`[A-ZА-ЯЁ]`)
	lowerRe   = regexp.MustCompile(`[a-zа-яё]`)
	numberRe  = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// ValidatePasswordStrength is applied to administrator passwords set by the
// seed command.
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < 8 {
		return ErrPasswordTooShort
	}
	if !upperRe.MatchString(password) {
		return ErrPasswordNoUpper
	}
	if !lowerRe.MatchString(password) {
		return ErrPasswordNoLower
	}
	if !numberRe.MatchString(password) {
		return ErrPasswordNoNumber
	}
	if !specialRe.MatchString(password) {
		return ErrPasswordNoSpecialChar
	}
	return nil
}
