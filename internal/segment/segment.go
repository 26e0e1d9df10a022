// Package segment splits transcript text into sentences.
package segment

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
)

const (
	// maxDocumentBytes is the per-document size limit of BatchDetectSyntax.
	maxDocumentBytes = 5000
	// maxBatchDocuments is the per-call document limit of BatchDetectSyntax.
	maxBatchDocuments = 25
)

// Segmenter splits text into sentences.
type Segmenter interface {
	Segment(ctx context.Context, text string) ([]string, error)
}

// ComprehendAPI is the subset of the Comprehend client used by ComprehendSegmenter.
type ComprehendAPI interface {
	BatchDetectSyntax(ctx context.Context, params *comprehend.BatchDetectSyntaxInput, optFns ...func(*comprehend.Options)) (*comprehend.BatchDetectSyntaxOutput, error)
}

// ComprehendSegmenter uses Comprehend syntax tokens to find sentence boundaries.
type ComprehendSegmenter struct {
	client ComprehendAPI
}

// NewComprehendSegmenter creates a Segmenter backed by Amazon Comprehend.
func NewComprehendSegmenter(client ComprehendAPI) *ComprehendSegmenter {
	return &ComprehendSegmenter{client: client}
}

func (s *ComprehendSegmenter) Segment(ctx context.Context, text string) ([]string, error) {
	docs := chunk(text, maxDocumentBytes)
	if len(docs) == 0 {
		return []string{}, nil
	}

	var tokens []string
	for start := 0; start < len(docs); start += maxBatchDocuments {
		end := min(start+maxBatchDocuments, len(docs))
		out, err := s.client.BatchDetectSyntax(ctx, &comprehend.BatchDetectSyntaxInput{
			TextList:     docs[start:end],
			LanguageCode: types.SyntaxLanguageCodeEn,
		})
		if err != nil {
			return nil, fmt.Errorf("detecting syntax: %w", err)
		}
		if len(out.ErrorList) > 0 {
			e := out.ErrorList[0]
			return nil, fmt.Errorf("detecting syntax: document %d: %s", start+int(deref(e.Index)), derefStr(e.ErrorMessage))
		}
		for _, result := range out.ResultList {
			for _, tok := range result.SyntaxTokens {
				tokens = append(tokens, derefStr(tok.Text))
			}
		}
	}
	return SplitTokens(tokens), nil
}

// SplitTokens joins tokens with single spaces and ends a sentence after ".", "!" or "?".
// Tokens left after the last terminator form a final sentence.
func SplitTokens(tokens []string) []string {
	sentences := []string{}
	var current []string
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		current = append(current, tok)
		if tok == "." || tok == "!" || tok == "?" {
			sentences = append(sentences, strings.Join(current, " "))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}
	return sentences
}

// chunk splits text at whitespace into pieces of at most limit bytes. A single
// word longer than limit is cut at the last rune boundary within the limit.
func chunk(text string, limit int) []string {
	var out []string
	var sb strings.Builder
	for _, word := range strings.Fields(text) {
		for len(word) > limit {
			if sb.Len() > 0 {
				out = append(out, sb.String())
				sb.Reset()
			}
			cut := limit
			for cut > 0 && !utf8.RuneStart(word[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
			out = append(out, word[:cut])
			word = word[cut:]
		}
		if sb.Len() > 0 && sb.Len()+1+len(word) > limit {
			out = append(out, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(word)
	}
	if sb.Len() > 0 {
		out = append(out, sb.String())
	}
	return out
}

func deref(p *int32) int32 {
	if p == nil {
		return 0
	}
	return *p
}

func derefStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
