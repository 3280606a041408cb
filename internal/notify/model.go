package notify

import "time"

// Notification kinds emitted by the platform.
const (
	KindCaseCreated = "case_created"
	KindCaseUpdate  = "case_update"
	KindCaseClosed  = "case_closed"
)

// Notification is one in-app entry on the reporter's bell. Clients
// poll with a since cursor; read state is per notification.
type Notification struct {
	ID           string     `json:"id"`
	ReporterCode string     `json:"reporter_code"`
	CaseID       string     `json:"case_id"`
	Kind         string     `json:"kind"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	CreatedAt    time.Time  `json:"created_at"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
}
