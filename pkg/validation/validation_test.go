package validation

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Code  string      `validate:"required,asset_code"`
	Name  string      `validate:"required,not_blank"`
	Email null.String `validate:"omitempty,custom_email"`
}

func TestValidator_Rules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sample{Code: "PC-000123", Name: "ok"}))
	assert.NoError(t, v.Validate(sample{Code: "NB00045", Name: "ok", Email: null.StringFrom("it@corp.tj")}))

	assert.Error(t, v.Validate(sample{Code: "123", Name: "ok"}))
	assert.Error(t, v.Validate(sample{Code: "PC-000123", Name: "   "}))
	assert.Error(t, v.Validate(sample{Code: "PC-000123", Name: "ok", Email: null.StringFrom("not-an-email")}))
}

type returnRequest struct {
	WarehouseID uint64 `json:"warehouse_id" validate:"required,gt=0"`
	Reason      string `json:"reason,omitempty" validate:"required,not_blank"`
	Internal    string `json:"-" validate:"max=3"`
}

func TestFieldErrors_UsesJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(returnRequest{Reason: "  ", Internal: "long"})
	fields := FieldErrors(err)

	assert.Equal(t, map[string]string{
		"warehouse_id": "обязательное поле",
		"reason":       "не может состоять из пробелов",
		"Internal":     "не длиннее 3",
	}, fields)
}

func TestFieldErrors_IgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, FieldErrors(nil))
	assert.Nil(t, FieldErrors(assert.AnError))
	assert.NoError(t, New().Validate(returnRequest{WarehouseID: 1, Reason: "Сдал", Internal: "ok"}))
}
