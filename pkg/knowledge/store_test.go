package knowledge_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/summitchronicles/basecamp/pkg/knowledge"
)

func TestKnowledge(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Knowledge Suite")
}

var _ = Describe("DocumentID", func() {
	It("slugifies titles deterministically", func() {
		Expect(knowledge.DocumentID("High-Altitude Acclimatization Protocol")).
			To(Equal(knowledge.DocumentID("High-Altitude Acclimatization Protocol")))
	})

	It("lowercases and dashes whitespace", func() {
		Expect(knowledge.DocumentID("Expedition Fitness  Training")).
			To(Equal("expedition-fitness-training"))
	})

	It("strips punctuation", func() {
		Expect(knowledge.DocumentID("What's Next? Everest!")).
			To(Equal("whats-next-everest"))
	})
})

var _ = Describe("Store", func() {
	var store *knowledge.Store

	chunksOf := func(texts ...string) []knowledge.Chunk {
		chunks := make([]knowledge.Chunk, len(texts))
		for i, text := range texts {
			chunks[i] = knowledge.Chunk{ID: text, Text: text}
		}
		return chunks
	}

	BeforeEach(func() {
		store = knowledge.NewStore()
	})

	It("stores a document with its chunks in order", func() {
		store.Replace(knowledge.Document{ID: "doc-a", Title: "A"}, chunksOf("one", "two"))

		all := store.AllChunks()
		Expect(all).To(HaveLen(2))
		Expect(all[0].Text).To(Equal("one"))
		Expect(all[0].Ordinal).To(Equal(0))
		Expect(all[1].Ordinal).To(Equal(1))
		Expect(all[0].DocumentID).To(Equal("doc-a"))
	})

	It("replaces chunks wholesale on re-ingestion", func() {
		store.Replace(knowledge.Document{ID: "doc-a"}, chunksOf("old-1", "old-2", "old-3"))
		store.Replace(knowledge.Document{ID: "doc-a"}, chunksOf("new-1"))

		all := store.AllChunks()
		Expect(all).To(HaveLen(1))
		Expect(all[0].Text).To(Equal("new-1"))
	})

	It("keeps the original insertion sequence across re-ingestion", func() {
		store.Replace(knowledge.Document{ID: "doc-a"}, chunksOf("a"))
		store.Replace(knowledge.Document{ID: "doc-b"}, chunksOf("b"))
		store.Replace(knowledge.Document{ID: "doc-a"}, chunksOf("a2"))

		docA, ok := store.Document("doc-a")
		Expect(ok).To(BeTrue())
		docB, _ := store.Document("doc-b")
		Expect(docA.Seq).To(BeNumerically("<", docB.Seq))

		all := store.AllChunks()
		Expect(all[0].Text).To(Equal("a2"))
		Expect(all[1].Text).To(Equal("b"))
	})

	It("removes a document and its chunks", func() {
		store.Replace(knowledge.Document{ID: "doc-a"}, chunksOf("a"))
		store.Replace(knowledge.Document{ID: "doc-b"}, chunksOf("b"))
		store.Remove("doc-a")

		_, ok := store.Document("doc-a")
		Expect(ok).To(BeFalse())
		Expect(store.AllChunks()).To(HaveLen(1))
		Expect(store.AllChunks()[0].DocumentID).To(Equal("doc-b"))
	})

	It("reports stats by category", func() {
		store.Replace(knowledge.Document{ID: "doc-a", Category: "Training"}, chunksOf("a", "b"))
		store.Replace(knowledge.Document{ID: "doc-b", Category: "Training"}, chunksOf("c"))
		store.Replace(knowledge.Document{ID: "doc-c"}, chunksOf("d"))

		stats := store.Stats()
		Expect(stats.Documents).To(Equal(3))
		Expect(stats.Chunks).To(Equal(4))
		Expect(stats.Categories).To(HaveKeyWithValue("Training", 2))
		Expect(stats.Categories).To(HaveKeyWithValue("uncategorized", 1))
		Expect(stats.LastUpdated).NotTo(BeNil())
	})
})
