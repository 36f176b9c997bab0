package scraper

// Quote is one scraped quote entry. Field names are fixed: the JSON/CSV
// writers and the API expose them as-is.
type Quote struct {
	Text   string   `json:"text"`
	Author string   `json:"author"`
	Tags   []string `json:"tags"`
	Link   string   `json:"link"`
}
