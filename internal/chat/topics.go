package chat

// Topic naming for chat events. Each chatroom gets its own channel so
// subscribers only receive events for rooms they asked about; this mirrors
// the per-room channel keying the delivery layer relies on for isolation.
const newMessageTopicPrefix = "chat.message.new."

// NewMessageTopic returns the bus topic carrying new-message events for the
// given chatroom.
func NewMessageTopic(chatID string) string {
	return newMessageTopicPrefix + chatID
}
