package domain

import "time"

// Marker is a geolocated classified-ad pin on the map. Each marker owns
// exactly one chatroom, identified by ChatID, for buyer/seller conversation.
type Marker struct {
	// ID is the marker's own identifier, tagged markerId so it never
	// collides with a storage engine's record id field.
	ID           string    `json:"markerId" validate:"required"`
	ChatID       string    `json:"chatId" validate:"required"`
	OwnerEmail   string    `json:"ownerEmail" validate:"required,email"`
	Title        string    `json:"title" validate:"required"`
	Price        int64     `json:"price" validate:"gte=0"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RoadAddress  string    `json:"roadAddress,omitempty"`
	JibunAddress string    `json:"jibunAddress,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate runs validation checks on the marker using the defined tags.
func (m Marker) Validate() error {
	return validatorInstance.Struct(m)
}

// Expired reports whether the marker's lifetime has passed at the given
// instant. A non-positive ttl disables expiry.
func (m Marker) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(m.CreatedAt) > ttl
}
