package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for date fields.
const DateLayout = "02.01.2006"

// maxAgeYears bounds the birthday field; age is measured in fractional
// years over the mean Julian year.
const maxAgeYears = 70

// String builds a field that accepts text strings.
func String(opts ...Option) *Field {
	return newField(coerceString, nil, opts...)
}

// Mapping builds a field that accepts a key-value object.
func Mapping(opts ...Option) *Field {
	return newField(coerceMapping, nil, opts...)
}

// Email builds a string field whose content must contain "@".
func Email(opts ...Option) *Field {
	return newField(coerceString, []CheckFunc{checkEmail}, opts...)
}

// Phone builds a field that accepts a string or an integer and normalizes
// it to an 11-digit string starting with 7.
func Phone(opts ...Option) *Field {
	return newField(coercePhone, []CheckFunc{checkPhone}, opts...)
}

// Date builds a string field carrying a DD.MM.YYYY calendar date. The
// canonical value stays the wire string.
func Date(opts ...Option) *Field {
	return newField(coerceString, []CheckFunc{checkDate}, opts...)
}

// BirthDate is a Date with an added upper age bound.
func BirthDate(opts ...Option) *Field {
	return newField(coerceString, []CheckFunc{checkDate, checkAge(time.Now)}, opts...)
}

// BirthDateAt is BirthDate with an injectable clock.
func BirthDateAt(now func() time.Time, opts ...Option) *Field {
	return newField(coerceString, []CheckFunc{checkDate, checkAge(now)}, opts...)
}

// Gender builds an integer field restricted to the declared gender values.
func Gender(opts ...Option) *Field {
	return newField(coerceInt, []CheckFunc{checkGender}, opts...)
}

// IDList builds a field that accepts a list of non-negative integers.
func IDList(opts ...Option) *Field {
	return newField(coerceIDList, []CheckFunc{checkIDList}, opts...)
}

func coerceString(value interface{}) (interface{}, *FieldError) {
	s, ok := value.(string)
	if !ok {
		return nil, typeError("field must be a string")
	}
	return s, nil
}

func coerceMapping(value interface{}) (interface{}, *FieldError) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, typeError("field must be an object")
	}
	return m, nil
}

func coercePhone(value interface{}) (interface{}, *FieldError) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	if n, ok := asInt64(value); ok {
		return strconv.FormatInt(n, 10), nil
	}
	return nil, typeError("field must be a string or a number")
}

func coerceInt(value interface{}) (interface{}, *FieldError) {
	n, ok := asInt64(value)
	if !ok {
		return nil, typeError("field must be an integer")
	}
	return int(n), nil
}

func coerceIDList(value interface{}) (interface{}, *FieldError) {
	switch list := value.(type) {
	case []int64:
		return list, nil
	case []interface{}:
		ids := make([]int64, 0, len(list))
		for _, item := range list {
			n, ok := asInt64(item)
			if !ok {
				return nil, typeError("field must be a list of integers")
			}
			ids = append(ids, n)
		}
		return ids, nil
	}
	return nil, typeError("field must be a list of integers")
}

func checkEmail(value interface{}) *FieldError {
	if !strings.Contains(value.(string), "@") {
		return contentError("field must contain @")
	}
	return nil
}

func checkPhone(value interface{}) *FieldError {
	s := value.(string)
	for _, r := range s {
		if r < '0' || r > '9' {
			return contentError("field must contain only digits 0-9")
		}
	}
	if len(s) != 11 || s[0] != '7' {
		return contentError("field must be 11 digits starting with 7")
	}
	return nil
}

func checkDate(value interface{}) *FieldError {
	if _, err := time.Parse(DateLayout, value.(string)); err != nil {
		return contentError("field must be a date in DD.MM.YYYY format")
	}
	return nil
}

func checkAge(now func() time.Time) CheckFunc {
	return func(value interface{}) *FieldError {
		date, err := time.Parse(DateLayout, value.(string))
		if err != nil {
			return contentError("field must be a date in DD.MM.YYYY format")
		}
		today := now().UTC().Truncate(24 * time.Hour)
		days := today.Sub(date) / (24 * time.Hour)
		if float64(days)/365.25 > maxAgeYears {
			return contentError(fmt.Sprintf("age must not exceed %d years", maxAgeYears))
		}
		return nil
	}
}

func checkGender(value interface{}) *FieldError {
	switch value.(int) {
	case GenderUnknown, GenderMale, GenderFemale:
		return nil
	}
	return contentError("field must be one of 0, 1, 2")
}

func checkIDList(value interface{}) *FieldError {
	for _, id := range value.([]int64) {
		if id < 0 {
			return contentError("field must contain non-negative integers")
		}
	}
	return nil
}

// asInt64 extracts an integral value from the representations a JSON
// decoder can produce.
func asInt64(value interface{}) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}
