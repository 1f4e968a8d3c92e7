package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/go-viper/mapstructure/v2"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/go-kv-crud/internal/errs"
)

// Client-facing messages for body problems.
const (
	MsgBodyMissing = "request body missing"
	MsgBodyInvalid = "request body invalid"
)

var errTrailingData = errors.New("unexpected data after the JSON value")

// BindAndValidate decodes the JSON request body into payload and validates
// it.
//
//   - zero-byte body: 400 "request body missing"
//   - malformed JSON, data after the first value, a schema mismatch or
//     failed validation: 400 "request body invalid", with field errors
//     where known
//
// Field names match the payload's json tags exactly; a key differing only
// in case is treated as an unknown field and ignored. Unknown fields never
// reach the payload.
//
// payload must be a pointer. Only the body is decoded; path and query
// parameters never reach the payload.
func BindAndValidate(c echo.Context, payload Validatable) error {
	req := c.Request()

	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			// Includes the body limit middleware rejecting an oversized read.
			return err
		}
		body = b
	}

	if len(body) == 0 {
		return errs.NewBadRequestError(MsgBodyMissing, nil, nil)
	}

	req.Body = io.NopCloser(bytes.NewReader(body))

	doc, err := decodeDocument(body)
	if err != nil {
		return errs.NewBadRequestError(MsgBodyInvalid, nil, nil)
	}

	if p, ok := payload.(SchemaProvider); ok {
		if err := p.Schema().Validate(doc); err != nil {
			return errs.NewBadRequestError(MsgBodyInvalid, nil, schemaErrors(err))
		}
	}

	if err := decodeInto(doc, payload); err != nil {
		return errs.NewBadRequestError(MsgBodyInvalid, nil, nil)
	}

	if err := payload.Validate(); err != nil {
		return errs.NewBadRequestError(MsgBodyInvalid, nil, fieldErrors(err))
	}

	return nil
}

// decodeDocument parses body as exactly one JSON value.
func decodeDocument(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	return doc, nil
}

// decodeInto copies doc onto payload through its json tags, matching keys
// case-sensitively.
func decodeInto(doc any, payload any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
		Result: payload,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(doc)
}
