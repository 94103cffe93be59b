package event

const UserRegisteredDestination string = "user_registered"
const UserRegisteredConsumerNotification string = "user_registered_notification"

type UserRegisteredMessage struct {
	EventID string `json:"event_id"`
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
}
