package notification

import "context"

// Message is the payload handed to a delivery transport. The transport is a
// sink: it accepts the message and owns delivery from there.
type Message struct {
	TargetEmployeeCode string      `json:"target_employee_code"`
	Type               string      `json:"type"`
	Message            string      `json:"message"`
	Payload            interface{} `json:"payload,omitempty"`
}

// Sink abstracts the notification transport so the delegation sweeper can
// depend on an interface rather than a concrete broker.
type Sink interface {
	Notify(ctx context.Context, msg Message) error
}
