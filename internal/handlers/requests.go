package handlers

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the go-playground/validator library to implement
// Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// CreateChatroomRequest is the DTO for POST /api/chatrooms.
type CreateChatroomRequest struct {
	ChatID       string `json:"chatId" validate:"required"`
	OwnerEmail   string `json:"ownerEmail"`
	RoadAddress  string `json:"roadAddress"`
	JibunAddress string `json:"jibunAddress"`
}

// AddMessageRequest is the DTO for POST /api/chatrooms/:chatid/messages.
// SenderEmail may be omitted when a viewer session exists; the handler fills
// it from the session before validation at the service boundary.
type AddMessageRequest struct {
	SenderEmail string `json:"senderEmail"`
	Text        string `json:"text"`
	SendAt      string `json:"sendAt"`
}

// CreateMarkerRequest is the DTO for POST /api/markers.
type CreateMarkerRequest struct {
	OwnerEmail   string  `json:"ownerEmail" validate:"required,email"`
	Title        string  `json:"title" validate:"required"`
	Price        int64   `json:"price" validate:"gte=0"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RoadAddress  string  `json:"roadAddress"`
	JibunAddress string  `json:"jibunAddress"`
}

// SessionRequest is the DTO for POST /api/session.
type SessionRequest struct {
	Email string `json:"email" validate:"required,email"`
}
