package domain

// Chatroom is a named, persistent container for an ordered message log.
// Exactly one chatroom exists per map marker; the marker module creates it
// when a marker is placed and deletes it with the marker.
//
// The message slice is append-only and its order is the creation/delivery
// order of the messages. Deleting a chatroom discards the log entirely.
type Chatroom struct {
	ChatID       string    `json:"chatId" validate:"required"`
	OwnerEmail   string    `json:"ownerEmail,omitempty"`
	RoadAddress  string    `json:"roadAddress,omitempty"`
	JibunAddress string    `json:"jibunAddress,omitempty"`
	Messages     []Message `json:"messages"`
}

// Validate checks that the chatroom has its required identifier.
func (c Chatroom) Validate() error {
	return validatorInstance.Struct(c)
}
