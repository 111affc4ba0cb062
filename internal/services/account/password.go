// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import (
	"bufio"
	"embed"
	"fmt"
	"strings"
	"unicode"

	"codeberg.org/oliverandrich/langeng/internal/apperr"
)

//go:embed common_passwords.txt
var commonPasswordsFS embed.FS

var commonPasswords map[string]struct{}

func init() {
	commonPasswords = make(map[string]struct{})
	file, err := commonPasswordsFS.Open("common_passwords.txt")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		password := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if password != "" && !strings.HasPrefix(password, "#") {
			commonPasswords[password] = struct{}{}
		}
	}
}

// PasswordValidator checks new passwords.
type PasswordValidator struct {
	MinLength            int
	MaxLength            int
	CheckCommonPasswords bool
	CheckUserSimilarity  bool
}

// DefaultPasswordValidator returns a validator with sensible defaults.
// bcrypt ignores everything past 72 bytes, hence MaxLength.
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		MinLength:            8,
		MaxLength:            72,
		CheckCommonPasswords: true,
		CheckUserSimilarity:  true,
	}
}

// ValidationError represents a single password validation error
type ValidationError struct {
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// PasswordValidationError wraps multiple validation errors
type PasswordValidationError struct {
	Errors []ValidationError
}

func (e *PasswordValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "password validation failed"
	}
	return e.Errors[0].Message
}

// Kind classifies password failures as invalid input.
func (e *PasswordValidationError) Kind() apperr.Kind {
	return apperr.KindInvalid
}

// Messages returns all error messages
func (e *PasswordValidationError) Messages() []string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Message
	}
	return messages
}

// Validate checks password and returns nil or a *PasswordValidationError.
func (v *PasswordValidator) Validate(password string, userAttributes ...string) error {
	var errs []ValidationError

	if len(password) < v.MinLength {
		errs = append(errs, ValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("Password must be at least %d characters long.", v.MinLength),
		})
	}
	if v.MaxLength > 0 && len(password) > v.MaxLength {
		errs = append(errs, ValidationError{
			Code:    "max_length",
			Message: fmt.Sprintf("Password must be at most %d bytes long.", v.MaxLength),
		})
	}

	if isEntirelyNumeric(password) {
		errs = append(errs, ValidationError{
			Code:    "entirely_numeric",
			Message: "Password cannot be entirely numeric.",
		})
	}

	if v.CheckCommonPasswords && isCommonPassword(password) {
		errs = append(errs, ValidationError{
			Code:    "common_password",
			Message: "This password is too common. Please choose a more secure password.",
		})
	}

	if v.CheckUserSimilarity && isSimilarToUserAttributes(password, userAttributes) {
		errs = append(errs, ValidationError{
			Code:    "too_similar",
			Message: "Password is too similar to your personal information.",
		})
	}

	if len(errs) == 0 {
		return nil
	}
	return &PasswordValidationError{Errors: errs}
}

func isEntirelyNumeric(password string) bool {
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(password) > 0
}

func isCommonPassword(password string) bool {
	_, exists := commonPasswords[strings.ToLower(password)]
	return exists
}

// isSimilarToUserAttributes flags passwords that contain, or are contained
// in, an attribute of at least three characters.
func isSimilarToUserAttributes(password string, attributes []string) bool {
	passwordLower := strings.ToLower(password)
	for _, attr := range attributes {
		attrLower := strings.ToLower(attr)
		if len(attrLower) < 3 || passwordLower == "" {
			continue
		}
		if strings.Contains(passwordLower, attrLower) || strings.Contains(attrLower, passwordLower) {
			return true
		}
	}
	return false
}
