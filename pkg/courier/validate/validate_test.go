package validate_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deshship/courier/pkg/courier/validate"
)

type parcel struct {
	RecipientName string
	Weight        float64
}

func (p parcel) ToMap() map[string]any {
	return map[string]any{
		"recipientName": p.RecipientName,
		"weight":        p.Weight,
	}
}

func TestValidatePassing(t *testing.T) {
	err := validate.New(map[string]any{
		"recipientName":  "Rahim Uddin",
		"recipientPhone": "+8801712345678",
		"weight":         2.5,
		"quantity":       3,
		"serviceType":    "express",
	}, validate.Rules{
		"recipientName":  "required|string",
		"recipientPhone": "required|phone",
		"weight":         "required|numeric|min:0.1|max:50",
		"quantity":       "integer|min:1",
		"serviceType":    "in:standard,express,same_day",
	}).Validate()

	assert.NoError(t, err)
}

func TestValidateAggregatesAllViolations(t *testing.T) {
	err := validate.New(map[string]any{
		"recipientName": "",
		"weight":        75.0,
		"quantity":      "two",
	}, validate.Rules{
		"recipientName": "required|string",
		"weight":        "numeric|max:50",
		"quantity":      "integer",
	}).Validate()

	require.Error(t, err)
	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Equal(t, []string{"The recipientName field is required."}, verr.Fields["recipientName"])
	assert.Equal(t, []string{"The weight may not be greater than 50."}, verr.Fields["weight"])
	assert.Equal(t, []string{"The quantity must be an integer."}, verr.Fields["quantity"])
}

func TestValidateMultipleViolationsOnOneField(t *testing.T) {
	err := validate.New(map[string]any{
		"weight": "heavy",
	}, validate.Rules{
		"weight": "required|numeric|min:0.1",
	}).Validate()

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "weight")
	assert.Contains(t, verr.Fields["weight"], "The weight must be a number.")
}

func TestValidateOptionalFieldsSkippedWhenAbsent(t *testing.T) {
	// Absent, nil, and empty-string optional fields must not trip type or
	// range rules.
	err := validate.New(map[string]any{
		"codAmount": nil,
		"email":     "",
	}, validate.Rules{
		"codAmount": "numeric|min:0",
		"email":     "email",
		"notes":     "string|max:255",
	}).Validate()

	assert.NoError(t, err)
}

func TestValidateRequiredEmptyValues(t *testing.T) {
	err := validate.New(map[string]any{
		"name":  "",
		"items": []any{},
	}, validate.Rules{
		"name":  "required",
		"items": "required|array",
	}).Validate()

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"The name field is required."}, verr.Fields["name"])
	assert.Equal(t, []string{"The items field is required."}, verr.Fields["items"])
}

func TestValidateRuleVocabulary(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		rule    string
		message string
	}{
		{"string ok", "hello", "string", ""},
		{"string bad", 42, "string", "The f must be a string."},
		{"numeric string ok", "12.5", "numeric", ""},
		{"numeric bad", "12x", "numeric", "The f must be a number."},
		{"integer float whole ok", float64(7), "integer", ""},
		{"integer float fractional", 7.5, "integer", "The f must be an integer."},
		{"integer digit string ok", "42", "integer", ""},
		{"float ok", 1.5, "float", ""},
		{"email ok", "ops@deshship.com.bd", "email", ""},
		{"email bad", "not-an-email", "email", "The f must be a valid email address."},
		{"phone ok", "+880 (2) 955-1234", "phone", ""},
		{"phone bad", "call me", "phone", "The f must be a valid phone number."},
		{"min numeric ok", 0.5, "min:0.1", ""},
		{"min numeric bad", 0.05, "min:0.1", "The f must be at least 0.1."},
		{"max numeric bad", 51, "max:50", "The f may not be greater than 50."},
		{"min string length", "ab", "min:5", "The f must be at least 5."},
		{"max string length ok", "abc", "max:5", ""},
		{"in ok", "express", "in:standard,express", ""},
		{"in bad", "overnight", "in:standard,express", "The f must be one of: standard, express."},
		{"regex ok", "DL123", "regex:^DL\\d+$", ""},
		{"regex bad", "XX123", "regex:^DL\\d+$", "The f format is invalid."},
		{"array ok", []string{"a"}, "array", ""},
		{"array bad", "a", "array", "The f must be an array."},
		{"boolean ok", true, "boolean", ""},
		{"boolean numeric ok", float64(1), "boolean", ""},
		{"boolean bad", "yes", "boolean", "The f must be a boolean."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.New(map[string]any{"f": tc.value}, validate.Rules{"f": "required|" + tc.rule}).Validate()
			if tc.message == "" {
				assert.NoError(t, err)
				return
			}
			var verr *validate.Error
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields["f"], tc.message)
		})
	}
}

func TestValidateCustomMessages(t *testing.T) {
	err := validate.New(map[string]any{}, validate.Rules{
		"recipientPhone": "required|phone",
	}).WithMessages(map[string]string{
		"recipientPhone.required": "Recipient phone number is required for delivery notifications",
	}).Validate()

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t,
		[]string{"Recipient phone number is required for delivery notifications"},
		verr.Fields["recipientPhone"])
}

func TestValidateCourierTagAndDescriptions(t *testing.T) {
	err := validate.New(map[string]any{}, validate.Rules{
		"recipientCity": "required",
	}).WithCourier("pathao").WithDescriptions(map[string]string{
		"recipientCity": "Pathao city ID from the city list endpoint",
	}).Validate()

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pathao", verr.Courier)
	assert.Contains(t, verr.Error(), "pathao: validation failed")

	items := verr.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "recipientCity", items[0].Field)
	assert.Equal(t, "Pathao city ID from the city list endpoint", items[0].Description)
}

func TestValidateMapperSubject(t *testing.T) {
	err := validate.New(parcel{RecipientName: "Karim", Weight: 1.2}, validate.Rules{
		"recipientName": "required|string",
		"weight":        "required|numeric|max:50",
	}).Validate()

	assert.NoError(t, err)
}

func TestValidateStructSubjectByReflection(t *testing.T) {
	subject := struct {
		SenderName string
		Quantity   int
	}{SenderName: "", Quantity: 0}

	err := validate.New(&subject, validate.Rules{
		"senderName": "required",
		"quantity":   "required|integer",
	}).Validate()

	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "senderName")
	// Zero int is present, not empty, so only the string-empty check applies.
	assert.NotContains(t, verr.Fields, "quantity")
}

func TestErrorItemsSortedAndRendered(t *testing.T) {
	verr := &validate.Error{
		Courier: "pathao",
		Fields: map[string][]string{
			"weight":        {"The weight must be a number.", "The weight must be at least 0.1."},
			"recipientName": {"The recipientName field is required."},
		},
		Descriptions: map[string]string{
			"weight": "Parcel weight in kilograms",
		},
	}

	items := verr.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "recipientName", items[0].Field)
	assert.Equal(t, "weight", items[1].Field)
	assert.Equal(t, "The weight must be a number. The weight must be at least 0.1.", items[1].Message)

	rendered := verr.Render()
	assert.Contains(t, rendered, `Validation failed for courier "pathao":`)
	assert.Contains(t, rendered, "Parcel weight in kilograms")
}

func TestErrorMarshalJSON(t *testing.T) {
	verr := &validate.Error{
		Courier: "pathao",
		Fields:  map[string][]string{"weight": {"The weight must be a number."}},
	}

	raw, err := json.Marshal(verr)
	require.NoError(t, err)

	var decoded struct {
		Courier string `json:"courier"`
		Errors  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "pathao", decoded.Courier)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "weight", decoded.Errors[0].Field)
}
