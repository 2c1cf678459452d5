package onlinescore

import (
	"scoring-api/internal/common/validation"
	"scoring-api/internal/scoring"
)

// personFromBound lifts the bound arguments into the scoring input. Gender
// stays a pointer: 0 is a declared value, absence is nil.
func personFromBound(b *validation.BoundRequest) scoring.Person {
	p := scoring.Person{
		FirstName: b.String("first_name"),
		LastName:  b.String("last_name"),
		Email:     b.String("email"),
		Phone:     b.String("phone"),
		Birthday:  b.String("birthday"),
	}
	if gender, ok := b.Int("gender"); ok {
		p.Gender = &gender
	}
	return p
}
