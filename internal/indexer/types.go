package indexer

// PageText is one page of extracted document text submitted for ingestion.
type PageText struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}
