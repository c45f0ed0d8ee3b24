package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/summitchronicles/basecamp/pkg/cache"
)

func TestCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cache Suite")
}

var _ = Describe("EmbeddingCache", func() {
	var (
		tmpDir string
		path   string
		logger *zap.Logger
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "cache-test-*")
		Expect(err).NotTo(HaveOccurred())
		path = filepath.Join(tmpDir, "embeddings.json")
		logger = zap.NewNop()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Fingerprint", func() {
		It("is deterministic", func() {
			Expect(cache.Fingerprint("hello")).To(Equal(cache.Fingerprint("hello")))
		})

		It("changes when the text changes by one character", func() {
			Expect(cache.Fingerprint("hello")).NotTo(Equal(cache.Fingerprint("hellp")))
		})
	})

	Describe("Lookup and Store", func() {
		It("misses on an unknown fingerprint", func() {
			c, err := cache.New(path, logger)
			Expect(err).NotTo(HaveOccurred())

			_, ok := c.Lookup(cache.Fingerprint("missing"))
			Expect(ok).To(BeFalse())
		})

		It("returns a stored embedding", func() {
			c, err := cache.New(path, logger)
			Expect(err).NotTo(HaveOccurred())

			fp := cache.Fingerprint("some chunk text")
			Expect(c.Store(fp, []float32{0.1, 0.2, 0.3})).To(Succeed())

			emb, ok := c.Lookup(fp)
			Expect(ok).To(BeTrue())
			Expect(emb).To(Equal([]float32{0.1, 0.2, 0.3}))
		})
	})

	Describe("persistence", func() {
		It("survives a reopen", func() {
			c, err := cache.New(path, logger)
			Expect(err).NotTo(HaveOccurred())

			fp := cache.Fingerprint("durable text")
			Expect(c.Store(fp, []float32{1, 2})).To(Succeed())

			reopened, err := cache.New(path, logger)
			Expect(err).NotTo(HaveOccurred())

			emb, ok := reopened.Lookup(fp)
			Expect(ok).To(BeTrue())
			Expect(emb).To(Equal([]float32{1, 2}))
			Expect(reopened.Len()).To(Equal(1))
		})

		It("starts empty when the file is corrupt", func() {
			Expect(os.WriteFile(path, []byte("not json"), 0o600)).To(Succeed())

			c, err := cache.New(path, logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Len()).To(Equal(0))
		})

		It("stays usable in memory when persistence fails", func() {
			badPath := filepath.Join(tmpDir, "missing", "sub")
			Expect(os.WriteFile(filepath.Join(tmpDir, "missing"), []byte("f"), 0o600)).To(Succeed())

			c, err := cache.New(filepath.Join(badPath, "embeddings.json"), logger)
			Expect(err).NotTo(HaveOccurred())

			fp := cache.Fingerprint("unpersistable")
			Expect(c.Store(fp, []float32{7})).NotTo(Succeed())

			emb, ok := c.Lookup(fp)
			Expect(ok).To(BeTrue())
			Expect(emb).To(Equal([]float32{7}))
		})

		It("skips persistence entirely with an empty path", func() {
			c, err := cache.New("", logger)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Store(cache.Fingerprint("x"), []float32{1})).To(Succeed())
		})
	})
})
