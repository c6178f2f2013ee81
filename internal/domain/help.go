package domain

// HelpRequest is an entry on the help board. Kept in memory only; the board
// is a bulletin, not a durable record.
type HelpRequest struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Time     string `json:"time"`
	Category string `json:"category"`
}
