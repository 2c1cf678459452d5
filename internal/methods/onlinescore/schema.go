// Package onlinescore implements the online_score API method.
package onlinescore

import (
	"scoring-api/internal/common/validation"
)

const MethodName = "online_score"

// crossRuleMessage is recorded under the synthetic "arguments" key when no
// qualifying field pair is present.
const crossRuleMessage = "at least one pair of phone/email, first_name/last_name or birthday/gender is required"

var schema = validation.NewSchema().
	Add("first_name", validation.String(validation.Nullable)).
	Add("last_name", validation.String(validation.Nullable)).
	Add("email", validation.Email(validation.Nullable)).
	Add("phone", validation.Phone(validation.Nullable)).
	Add("birthday", validation.BirthDate(validation.Nullable)).
	Add("gender", validation.Gender(validation.Nullable)).
	Rule("arguments", crossRule)

// Schema returns the shared argument schema for the method.
func Schema() *validation.Schema {
	return schema
}

func crossRule(b *validation.BoundRequest) string {
	if b.Has("phone") && b.Has("email") {
		return ""
	}
	if b.Has("first_name") && b.Has("last_name") {
		return ""
	}
	if b.Has("birthday") && b.Has("gender") {
		return ""
	}
	return crossRuleMessage
}
