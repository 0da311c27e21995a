package model

// Entry is one advisory item projected from the feed. Fields hold the raw
// feed strings; Description may contain markup.
type Entry struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Published   string `json:"published"`
	Description string `json:"description"`
}
