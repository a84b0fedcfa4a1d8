package models

// EventInfo holds the single event's presentation details used in emails
// and rendered tickets.
type EventInfo struct {
	Name  string `json:"name"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Venue string `json:"venue"`
	Seat  string `json:"seat"`
}
