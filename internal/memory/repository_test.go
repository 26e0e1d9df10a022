package memory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildInsert(t *testing.T) {
	records := []Record{
		{Text: "a", Embedding: []float32{1, 2}, Username: "u"},
		{Text: "b", Embedding: []float32{3, 4}, Username: "u", Speaker: strPtr("spk_1")},
	}

	query, args := buildInsert(records)
	assert.True(t, strings.HasPrefix(query, "INSERT INTO embeddings (text_segment, embedding, username, speaker) VALUES "))
	assert.Contains(t, query, "($1, $2, $3, $4), ($5, $6, $7, $8)")
	assert.Len(t, args, 8)
	assert.Equal(t, "b", args[4])
	assert.Equal(t, strPtr("spk_1"), args[7])
}

func TestAbs(t *testing.T) {
	assert.Equal(t, 3, abs(-3))
	assert.Equal(t, 3, abs(3))
	assert.Equal(t, 0, abs(0))
}
