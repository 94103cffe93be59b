package event

const OTPIssuedDestination string = "otp_issued"
const OTPIssuedConsumerNotification string = "otp_issued_notification"

type OTPIssuedMessage struct {
	EventID  string `json:"event_id"`
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Purpose  string `json:"purpose"`
	Code     string `json:"code"`
	SendMode string `json:"send_mode"`
}
