package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// tagMessages - пояснения для тегов, которые встречаются в DTO инвентаря.
var tagMessages = map[string]string{
	"required":     "обязательное поле",
	"not_blank":    "не может состоять из пробелов",
	"asset_code":   "инвентарный номер вида PC-000123",
	"custom_email": "некорректный email",
	"gt":           "должно быть больше %s",
	"gte":          "должно быть не меньше %s",
	"max":          "не длиннее %s",
}

// CustomValidator проверяет тела запросов для Echo и называет поля так же, как их видит клиент (по json-тегу).
type CustomValidator struct {
	validate *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validate.Struct(i)
}

// New собирает валидатор. Ошибка регистрации правил - ошибка сборки, сервер не стартует.
func New() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	registerNullTypes(v)
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}
	return &CustomValidator{validate: v}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}

// FieldErrors раскладывает ошибку валидатора по полям. nil - ошибка не от валидатора.
func FieldErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = describe(fe)
	}
	return fields
}

func describe(fe validator.FieldError) string {
	message, ok := tagMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("не прошло проверку '%s'", fe.Tag())
	}
	if strings.Contains(message, "%s") {
		return fmt.Sprintf(message, fe.Param())
	}
	return message
}
