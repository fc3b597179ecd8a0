package errors

import (
	"errors"
	"fmt"
)

var (
	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")

	// Жизненный цикл оборудования и лицензии
	ErrInvalidTransition          = fmt.Errorf("недопустимый переход состояния")
	ErrDuplicateLicenseAssignment = fmt.Errorf("у пользователя уже есть лицензия этого типа")
	ErrValidation                 = fmt.Errorf("ошибка валидации")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")
)

// NotFoundError - ссылка на несуществующую сущность (оборудование, лицензия, пользователь...).
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s с идентификатором %v не найден(а)", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func NewNotFoundError(entity string, id interface{}) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidTransitionError - действие недопустимо из текущего состояния.
type InvalidTransitionError struct {
	Action string
	State  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("действие %s недопустимо в состоянии %s", e.Action, e.State)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func NewInvalidTransitionError(action, state string) error {
	return &InvalidTransitionError{Action: action, State: state}
}

// DuplicateLicenseAssignmentError - пользователь уже держит единицу лицензии данного типа.
type DuplicateLicenseAssignmentError struct {
	LicenseTypeID   uint64
	LicenseTypeName string
	UserID          uint64
	HeldUnitID      uint64
}

func (e *DuplicateLicenseAssignmentError) Error() string {
	return fmt.Sprintf("пользователь %d уже имеет лицензию типа «%s» (единица %d)", e.UserID, e.LicenseTypeName, e.HeldUnitID)
}

func (e *DuplicateLicenseAssignmentError) Is(target error) bool {
	return target == ErrDuplicateLicenseAssignment
}

// ValidationError - не заполнено обязательное для перехода поле.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func NewValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// HttpError - ошибка для транспортного слоя: код ответа, сообщение для клиента и исходная причина.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, ctx map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: ctx}
}

// IsDomainError сообщает, что ошибка относится к предметной таксономии, а не к инфраструктуре.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrDuplicateLicenseAssignment) ||
		errors.Is(err, ErrValidation)
}
