package rank_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/summitchronicles/basecamp/pkg/knowledge"
	"github.com/summitchronicles/basecamp/pkg/rank"
)

func TestRank(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rank Suite")
}

var _ = Describe("CosineSimilarity", func() {
	It("returns 1 for identical vectors", func() {
		Expect(rank.CosineSimilarity([]float32{1, 2, 3}, []float32{1, 2, 3})).
			To(BeNumerically("~", 1.0, 1e-6))
	})

	It("returns 0 for orthogonal vectors", func() {
		Expect(rank.CosineSimilarity([]float32{1, 0}, []float32{0, 1})).
			To(BeNumerically("~", 0.0, 1e-6))
	})

	It("returns -1 for opposite vectors", func() {
		Expect(rank.CosineSimilarity([]float32{1, 0}, []float32{-1, 0})).
			To(BeNumerically("~", -1.0, 1e-6))
	})

	It("returns 0 for mismatched dimensions", func() {
		Expect(rank.CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})).To(BeZero())
	})

	It("returns 0 for zero vectors", func() {
		Expect(rank.CosineSimilarity([]float32{0, 0}, []float32{1, 2})).To(BeZero())
	})
})

var _ = Describe("Rank", func() {
	var (
		chunks []knowledge.Chunk
		docs   map[string]knowledge.Document
	)

	chunk := func(id, docID string, seq, ordinal int, emb []float32) knowledge.Chunk {
		return knowledge.Chunk{
			ID:          id,
			DocumentID:  docID,
			DocumentSeq: seq,
			Ordinal:     ordinal,
			Text:        "text of " + id,
			Embedding:   emb,
		}
	}

	BeforeEach(func() {
		docs = map[string]knowledge.Document{
			"doc-a": {ID: "doc-a", Title: "Acclimatization", Tags: []string{"altitude"}},
			"doc-b": {ID: "doc-b", Title: "Nutrition"},
		}
		chunks = []knowledge.Chunk{
			chunk("a0", "doc-a", 0, 0, []float32{1, 0}),
			chunk("a1", "doc-a", 0, 1, []float32{0.9, 0.1}),
			chunk("b0", "doc-b", 1, 0, []float32{0, 1}),
		}
	})

	It("orders by descending similarity", func() {
		results := rank.Rank("query", []float32{1, 0}, chunks, docs, rank.Options{Limit: 10})
		Expect(results).To(HaveLen(3))
		for i := 1; i < len(results); i++ {
			Expect(results[i-1].Similarity).To(BeNumerically(">=", results[i].Similarity))
		}
		Expect(results[0].Chunk.ID).To(Equal("a0"))
	})

	It("drops results below the threshold", func() {
		results := rank.Rank("query", []float32{1, 0}, chunks, docs, rank.Options{Limit: 10, Threshold: 0.5})
		Expect(results).To(HaveLen(2))
		for _, r := range results {
			Expect(r.Similarity).To(BeNumerically(">=", 0.5))
		}
	})

	It("never returns more than the limit", func() {
		results := rank.Rank("query", []float32{1, 0}, chunks, docs, rank.Options{Limit: 1})
		Expect(results).To(HaveLen(1))
	})

	It("clamps the limit to the maximum", func() {
		many := make([]knowledge.Chunk, 0, rank.MaxLimit+5)
		for i := 0; i < rank.MaxLimit+5; i++ {
			many = append(many, chunk("c", "doc-a", 0, i, []float32{1, 0}))
		}
		results := rank.Rank("query", []float32{1, 0}, many, docs, rank.Options{Limit: 100})
		Expect(results).To(HaveLen(rank.MaxLimit))
	})

	It("breaks similarity ties by insertion order then ordinal", func() {
		tied := []knowledge.Chunk{
			chunk("b0", "doc-b", 1, 0, []float32{1, 0}),
			chunk("a1", "doc-a", 0, 1, []float32{1, 0}),
			chunk("a0", "doc-a", 0, 0, []float32{1, 0}),
		}
		results := rank.Rank("query", []float32{1, 0}, tied, docs, rank.Options{Limit: 10})
		Expect(results[0].Chunk.ID).To(Equal("a0"))
		Expect(results[1].Chunk.ID).To(Equal("a1"))
		Expect(results[2].Chunk.ID).To(Equal("b0"))
	})

	It("skips chunks without embeddings", func() {
		withBare := append(chunks, knowledge.Chunk{ID: "bare", DocumentID: "doc-a"})
		results := rank.Rank("query", []float32{1, 0}, withBare, docs, rank.Options{Limit: 10})
		Expect(results).To(HaveLen(3))
	})

	It("boosts relevance for title and tag matches without changing selection", func() {
		results := rank.Rank("acclimatization altitude plan", []float32{0.8, 0.2}, chunks, docs, rank.Options{Limit: 10, Threshold: 0.5})
		Expect(results[0].Chunk.DocumentID).To(Equal("doc-a"))
		Expect(results[0].Relevance).To(BeNumerically(">", results[0].Similarity))
		Expect(results[0].Relevance).To(BeNumerically("<=", 1.0))
	})

	It("returns an empty slice for an empty knowledge base", func() {
		results := rank.Rank("query", []float32{1, 0}, nil, docs, rank.Options{})
		Expect(results).To(BeEmpty())
	})
})

var _ = Describe("ExtractKeywords", func() {
	It("drops short words and stopwords", func() {
		words := rank.ExtractKeywords("What is the best acclimatization plan?")
		Expect(words).To(ConsistOf("best", "acclimatization", "plan"))
	})
})

var _ = Describe("Snippet", func() {
	It("returns short text unchanged", func() {
		Expect(rank.Snippet("short")).To(Equal("short"))
	})

	It("truncates long text with an ellipsis", func() {
		long := make([]byte, rank.SnippetLength*2)
		for i := range long {
			long[i] = 'a'
		}
		snippet := rank.Snippet(string(long))
		Expect(snippet).To(HaveSuffix("..."))
		Expect(len(snippet)).To(Equal(rank.SnippetLength + 3))
	})
})
