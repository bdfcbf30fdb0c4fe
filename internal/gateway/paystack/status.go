package paystack

// ChargeStatus is the closed set of charge outcomes this integration handles.
// Anything the gateway reports outside this set must fail closed: an
// unrecognized status is never treated as success.
type ChargeStatus string

const (
	StatusSuccess ChargeStatus = "success"
	StatusSendPIN ChargeStatus = "send_pin"
	StatusSendOTP ChargeStatus = "send_otp"
	StatusPending ChargeStatus = "pending"
	StatusOpenURL ChargeStatus = "open_url"
)

func ParseChargeStatus(s string) (ChargeStatus, bool) {
	switch ChargeStatus(s) {
	case StatusSuccess, StatusSendPIN, StatusSendOTP, StatusPending, StatusOpenURL:
		return ChargeStatus(s), true
	default:
		return "", false
	}
}

// EventChargeSuccess is the only webhook event type that triggers
// reconciliation; every other event is acknowledged and ignored.
const EventChargeSuccess = "charge.success"
