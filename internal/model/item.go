// Package model holds the payload types stored under each resource.
package model

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Item is the persisted and returned form of a resource entry. ID is the
// last part of the key the item is stored under.
type Item[T any] struct {
	ID   string `json:"id"`
	Data T      `json:"data"`
}

// ItemData is the client-supplied body for create and update.
//
// Pointers let `required` tell a missing field apart from "" or false.
// Extra fields in the body are ignored.
type ItemData struct {
	Text      *string `json:"text" validate:"required"`
	Completed *bool   `json:"completed" validate:"required"`
}

// Validate applies the struct tags.
func (d *ItemData) Validate() error {
	return validate.Struct(d)
}

// Schema describes the accepted body. Properties are optional here; their
// presence is enforced by the struct tags so both rules report the same
// field names.
func (d *ItemData) Schema() *jsonschema.Schema {
	return itemDataSchema
}

var itemDataSchema = jsonschema.MustCompileString("item_data.schema.json", `{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"completed": {"type": "boolean"}
	}
}`)

// NewItemData is a convenience for building payloads in code.
func NewItemData(text string, completed bool) ItemData {
	return ItemData{Text: &text, Completed: &completed}
}

var validate = newValidator()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
