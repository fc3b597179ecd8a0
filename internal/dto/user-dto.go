package dto

type CreateUserDTO struct {
	Fio   string `json:"fio" validate:"required,not_blank"`
	Email string `json:"email" validate:"omitempty,custom_email"`
}

type ShortUserDTO struct {
	ID       uint64 `json:"id"`
	Fio      string `json:"fio"`
	IsActive bool   `json:"is_active"`
}
