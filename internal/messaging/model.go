package messaging

import "time"

// Sender side of a case message.
const (
	SenderStaff    = "STAFF"
	SenderReporter = "REPORTER"
)

// Message is one entry in the thread between the DECE and the
// reporter of a case. The reporter side is identified only by the
// pseudonymous code on the case.
type Message struct {
	ID        string    `json:"id"`
	CaseID    string    `json:"case_id"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
