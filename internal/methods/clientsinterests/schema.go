// Package clientsinterests implements the clients_interests API method.
package clientsinterests

import (
	"scoring-api/internal/common/validation"
)

const MethodName = "clients_interests"

var schema = validation.NewSchema().
	Add("client_ids", validation.IDList(validation.Required)).
	Add("date", validation.Date(validation.Nullable))

// Schema returns the shared argument schema for the method.
func Schema() *validation.Schema {
	return schema
}
