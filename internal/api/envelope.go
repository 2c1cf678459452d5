// Package api implements the method-dispatch pipeline: envelope binding,
// token authentication, the dispatch table, and the HTTP boundary.
package api

import (
	"scoring-api/internal/common/validation"
)

// envelopeSchema is the outer request contract. Order matters only for
// deterministic error ordering.
var envelopeSchema = validation.NewSchema().
	Add("account", validation.String(validation.Nullable)).
	Add("login", validation.String(validation.Required, validation.Nullable)).
	Add("token", validation.String(validation.Required, validation.Nullable)).
	Add("arguments", validation.Mapping(validation.Required, validation.Nullable)).
	Add("method", validation.String(validation.Required))

// Envelope is the validated outer request.
type Envelope struct {
	Account   string
	Login     string
	Token     string
	Method    string
	Arguments map[string]interface{}

	// Admin is derived at bind time: the login equals the reserved admin
	// identity.
	Admin bool
}

// BindEnvelope validates the raw body against the outer schema. On
// failure the envelope is nil and the bound request carries the errors.
func BindEnvelope(raw map[string]interface{}, adminLogin string) (*Envelope, *validation.BoundRequest) {
	bound := envelopeSchema.Bind(raw)
	if !bound.Valid() {
		return nil, bound
	}
	env := &Envelope{
		Account:   bound.String("account"),
		Login:     bound.String("login"),
		Token:     bound.String("token"),
		Method:    bound.String("method"),
		Arguments: bound.Mapping("arguments"),
	}
	env.Admin = env.Login == adminLogin
	return env, bound
}
