package exportprotocol

const (
	Success   OutcomeKind = "success"
	Duplicate OutcomeKind = "duplicate"
	Failure   OutcomeKind = "failure"
)

type OutcomeKind string

type Outcome struct {
	OrderID string      `json:"orderId,omitempty"`
	Kind    OutcomeKind `json:"kind"`
	Reason  string      `json:"reason,omitempty"`
}

type Progress struct {
	Scope    string `json:"scope"`
	RunID    string `json:"runId,omitempty"`
	State    string `json:"state"`
	Total    int    `json:"total"`
	Captured int    `json:"captured"`
	Failed   int    `json:"failed"`
	Skipped  int    `json:"skipped"`
}

type CaptureReport struct {
	Progress
	Merged       bool      `json:"merged"`
	Added        []string  `json:"added"`
	Replaced     []string  `json:"replaced"`
	StoredOrders int       `json:"storedOrders"`
	Outcomes     []Outcome `json:"outcomes"`
	NextPageURL  string    `json:"nextPageUrl,omitempty"`
	DurationMs   int64     `json:"durationMs"`
}

type NextPage struct {
	URL string `json:"url"`
}

type Error struct {
	Error string `json:"error"`
}
