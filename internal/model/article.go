package model

import "time"

// Article is one cleaned syndication feed entry. It exists only between
// fetching and chunking; the indexed unit is Chunk.
type Article struct {
	Title    string
	Content  string
	FullText string
	URL      string
	Date     time.Time
	Source   string
	GUID     string
}

// Chunk is a bounded slice of an article's full text, the unit that gets
// embedded and indexed. Its fields double as the vector-store payload.
type Chunk struct {
	ID     string `json:"-"`
	Text   string `json:"text"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Date   string `json:"date"`
	Source string `json:"source"`
	GUID   string `json:"guid"`
	Index  int    `json:"chunk_index"`
	Total  int    `json:"total_chunks"`
}

// IndexedPoint is the unit persisted in the vector store. Re-upserting the
// same ID overwrites the stored point.
type IndexedPoint struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Chunk     `json:"payload"`
}

// RetrievedDoc is a search hit: a stored chunk payload plus its cosine
// similarity score (higher is more relevant).
type RetrievedDoc struct {
	Text   string  `json:"text"`
	Title  string  `json:"title"`
	Date   string  `json:"date"`
	Source string  `json:"source"`
	URL    string  `json:"url"`
	Score  float32 `json:"score"`
}

// SourceCitation is the subset of a retrieved doc surfaced to the end user.
type SourceCitation struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	URL   string `json:"url"`
}
