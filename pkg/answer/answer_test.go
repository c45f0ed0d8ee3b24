package answer_test

import (
	"context"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/summitchronicles/basecamp/pkg/answer"
	"github.com/summitchronicles/basecamp/pkg/knowledge"
	"github.com/summitchronicles/basecamp/pkg/rank"
	testutils "github.com/summitchronicles/basecamp/pkg/utils/test"
)

func TestAnswer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Answer Suite")
}

var _ = Describe("Synthesizer", func() {
	var (
		mock  *testutils.MockProvider
		synth *answer.Synthesizer
		ctx   context.Context
	)

	result := func(title, text string, similarity float32) rank.Result {
		return rank.Result{
			Chunk:      knowledge.Chunk{Text: text},
			Document:   knowledge.Document{Title: title, Category: "Training"},
			Similarity: similarity,
			Relevance:  similarity,
		}
	}

	BeforeEach(func() {
		mock = testutils.NewMockProvider()
		synth = answer.New(mock, 0, zap.NewNop())
		ctx = context.Background()
	})

	Describe("Synthesize", func() {
		It("returns the fallback without calling the generator when nothing was retrieved", func() {
			resp, err := synth.Synthesize(ctx, "anything", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Answer).To(Equal(answer.FallbackAnswer))
			Expect(resp.Confidence).To(Equal(float32(answer.FallbackConfidence)))
			Expect(resp.Sources).To(BeEmpty())
			Expect(resp.ContextUsed).To(BeEmpty())
			Expect(mock.CompleteCalls()).To(Equal(0))
		})

		It("returns the fallback when the top similarity is below the floor", func() {
			results := []rank.Result{result("Weak", "barely related", 0.3)}
			resp, err := synth.Synthesize(ctx, "anything", results)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Confidence).To(Equal(float32(answer.FallbackConfidence)))
			Expect(mock.CompleteCalls()).To(Equal(0))
		})

		It("grounds the answer in the ranked chunks", func() {
			mock.Completion = "The next expedition is Everest in 2027."
			results := []rank.Result{
				result("Expeditions", "The next expedition is Everest, targeted for 2027.", 0.92),
			}

			resp, err := synth.Synthesize(ctx, "What is the next expedition?", results)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Answer).To(ContainSubstring("Everest"))
			Expect(resp.Method).To(Equal(answer.MethodRetrieval))
			Expect(resp.Sources).To(HaveLen(1))
			Expect(resp.Sources[0].Title).To(Equal("Expeditions"))
			Expect(resp.ContextUsed).To(ConsistOf("The next expedition is Everest, targeted for 2027."))
			Expect(resp.Confidence).To(BeNumerically(">", answer.FallbackConfidence))

			Expect(mock.LastPrompt()).To(ContainSubstring("SOURCE: Expeditions"))
			Expect(mock.LastPrompt()).To(ContainSubstring("What is the next expedition?"))
		})

		It("drops whole chunks once the context budget would be exceeded", func() {
			synth = answer.New(mock, 150, zap.NewNop())
			results := []rank.Result{
				result("First", strings.Repeat("a", 100), 0.9),
				result("Second", strings.Repeat("b", 100), 0.8),
			}

			resp, err := synth.Synthesize(ctx, "q", results)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ContextUsed).To(HaveLen(1))
			Expect(resp.ContextUsed[0]).To(Equal(strings.Repeat("a", 100)))
			Expect(mock.LastPrompt()).NotTo(ContainSubstring("bbb"))
		})

		It("surfaces generator failures", func() {
			mock.FailComplete = true
			results := []rank.Result{result("Doc", "content", 0.9)}
			_, err := synth.Synthesize(ctx, "q", results)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Direct", func() {
		It("answers without sources at the fixed confidence", func() {
			resp, err := synth.Direct(ctx, "Any question", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Method).To(Equal(answer.MethodDirect))
			Expect(resp.Sources).To(BeEmpty())
			Expect(resp.Confidence).To(Equal(float32(answer.DirectConfidence)))
		})

		It("includes caller-supplied context in the prompt", func() {
			_, err := synth.Direct(ctx, "Any question", "I train at sea level.")
			Expect(err).NotTo(HaveOccurred())
			Expect(mock.LastPrompt()).To(ContainSubstring("I train at sea level."))
		})
	})
})

var _ = Describe("Confidence", func() {
	It("grows with the top similarity", func() {
		Expect(answer.Confidence(0.9, 3)).To(BeNumerically(">", answer.Confidence(0.5, 3)))
	})

	It("grows with the number of corroborating sources", func() {
		Expect(answer.Confidence(0.8, 4)).To(BeNumerically(">", answer.Confidence(0.8, 1)))
	})

	It("counts at most five sources", func() {
		Expect(answer.Confidence(0.8, 9)).To(Equal(answer.Confidence(0.8, 5)))
	})

	It("never exceeds one", func() {
		Expect(answer.Confidence(1.0, 5)).To(BeNumerically("<=", 1.0))
	})
})
