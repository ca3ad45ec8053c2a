package binder

import (
	"regexp"
	"strings"

	"github.com/bookcross/bookcross/pkg/models"
	"github.com/go-playground/validator/v10"
)

var (
	dateRE = regexp.MustCompile(`^\d{4}-(0[0-9]|1[0-2])-(0[0-9]|1[0-9]|2[0-9]|3[0-1])$`)
	isbnRE = regexp.MustCompile(`^(\d{9}[\dX]|\d{13})$`)
)

// dateValidator ensures the value matches the format YYYY-MM-DD or the empty
// string. The reason the empty string is allowed is that this validator can be
// used to clear out values. However, this is only useful in that case, so if
// you're using this validator but want the value to be required, add a `ne=` to
// the validate tag so that the empty string is disallowed.
func dateValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return dateRE.MatchString(value)
}

// isbnValidator accepts the empty string (no ISBN) or a 10 or 13 character
// ISBN. Check digits aren't verified since plenty of printed books carry bad
// ones.
func isbnValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return isbnRE.MatchString(value)
}

func bookStatusValidator(fl validator.FieldLevel) bool {
	return models.IsValidBookStatus(fl.Field().String())
}

// objectKeyValidator accepts keys like "covers/abc.jpg". Absolute paths,
// URLs and parent references are rejected. Empty clears the value.
func objectKeyValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if strings.HasPrefix(value, "/") || strings.Contains(value, "://") {
		return false
	}
	for _, part := range strings.Split(value, "/") {
		if part == ".." || part == "" {
			return false
		}
	}
	return true
}
