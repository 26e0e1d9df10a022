package memory

import (
	"time"
)

// Record is one sentence-level utterance persisted in the embeddings table.
// Embedding is only populated on the write path; reads never load it back.
type Record struct {
	ID        int64     `json:"id,omitempty"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding,omitempty"`
	Username  string    `json:"username"`
	Speaker   *string   `json:"speaker,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer is the result of the retrieval pipeline.
type Answer struct {
	Matches  string `json:"matches"`
	Response string `json:"response"`
}

// Exchange is one answered question kept in the per-user history.
type Exchange struct {
	Question string    `json:"question"`
	Response string    `json:"response"`
	AskedAt  time.Time `json:"asked_at"`
}

// AnswerRequest is used by the API to ask a question against stored memories.
type AnswerRequest struct {
	Query string `json:"query" validate:"required"`
}

// InsertRecord is one record of an InsertRequest.
type InsertRecord struct {
	Text      string    `json:"text" validate:"required"`
	Embedding []float32 `json:"embedding" validate:"required,min=1"`
	Username  string    `json:"username" validate:"required"`
	Speaker   *string   `json:"speaker,omitempty"`
}

// InsertRequest is used by the API to store pre-embedded records.
type InsertRequest struct {
	Records []InsertRecord `json:"records" validate:"required,min=1,dive"`
}

// SearchRequest is used by the API to rank stored records against an embedding.
type SearchRequest struct {
	Embedding []float32 `json:"embedding" validate:"required,min=1"`
	Offset    int       `json:"offset" validate:"gte=0"`
	Limit     *int      `json:"limit,omitempty" validate:"omitempty,gte=0"`
}

// InsertResult reports how many records were written.
type InsertResult struct {
	Inserted int `json:"inserted"`
}
