package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=4"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=0"`
}

func decodeInto(t *testing.T, payload map[string]interface{}, v interface{}) error {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return DecodeAndValidate(req, v)
}

// Feature: boutique-catalog, Property 10: Required field validation works
func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeUsername bool, includePassword bool) bool {
			payload := map[string]interface{}{}
			if includeUsername {
				payload["username"] = "admin"
			}
			if includePassword {
				payload["password"] = "s3cret"
			}

			var req loginRequest
			err := decodeInto(t, payload, &req)
			if includeUsername && includePassword {
				return err == nil
			}
			return err != nil && len(FormatValidationErrors(err)) > 0
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: boutique-catalog, Property 11: Quantity range is validated
func TestProperty_QuantityRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("negative quantities fail, zero and above pass", prop.ForAll(
		func(quantity int) bool {
			var req quantityRequest
			err := decodeInto(t, map[string]interface{}{"quantity": quantity}, &req)
			return (err == nil) == (quantity >= 0)
		},
		gen.IntRange(-100, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestFormatValidationErrors(t *testing.T) {
	var req loginRequest
	err := decodeInto(t, map[string]interface{}{"username": "admin", "password": "abc"}, &req)
	require.Error(t, err)

	assert.Equal(t, []ValidationError{{Field: "password", Message: "Value is too short"}}, FormatValidationErrors(err))

	var qty quantityRequest
	err = decodeInto(t, map[string]interface{}{}, &qty)
	assert.Equal(t, []ValidationError{{Field: "quantity", Message: "This field is required"}}, FormatValidationErrors(err))
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewBufferString("{not json"))
	var body loginRequest
	err := DecodeAndValidate(req, &body)
	assert.Error(t, err)
	assert.Empty(t, FormatValidationErrors(err))
}
