package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/summitchronicles/basecamp/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("InitViper", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns defaults when no config file exists", func() {
		v, err := config.InitViper(filepath.Join(tmpDir, "missing.toml"))
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		defaults := config.NewDefaultConfig()
		Expect(cfg.Server.Listen).To(Equal(defaults.Server.Listen))
		Expect(cfg.Provider.Name).To(Equal(defaults.Provider.Name))
		Expect(cfg.Provider.Target).To(Equal(defaults.Provider.Target))
		Expect(cfg.Provider.EmbeddingModel).To(Equal(defaults.Provider.EmbeddingModel))
		Expect(cfg.Provider.GenerationModel).To(Equal(defaults.Provider.GenerationModel))
		Expect(cfg.Cache.Path).To(Equal(defaults.Cache.Path))
		Expect(cfg.Content.Watch).To(BeTrue())
		Expect(cfg.Engine.MaxChunkSize).To(Equal(defaults.Engine.MaxChunkSize))
	})

	It("loads values from a TOML config file over defaults", func() {
		data := `debug = true

[server]
listen = ":9999"

[provider]
name = "openai"
embedding_model = "text-embedding-3-small"

[engine]
max_chunk_size = 800
`
		path := filepath.Join(tmpDir, "basecamp.toml")
		Expect(os.WriteFile(path, []byte(data), 0o600)).To(Succeed())

		v, err := config.InitViper(path)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.FromViper(v)
		Expect(cfg.Debug).To(BeTrue())
		Expect(cfg.Server.Listen).To(Equal(":9999"))
		Expect(cfg.Provider.Name).To(Equal("openai"))
		Expect(cfg.Provider.EmbeddingModel).To(Equal("text-embedding-3-small"))
		Expect(cfg.Engine.MaxChunkSize).To(Equal(800))

		// Untouched sections keep their defaults.
		defaults := config.NewDefaultConfig()
		Expect(cfg.Provider.Target).To(Equal(defaults.Provider.Target))
		Expect(cfg.Cache.Path).To(Equal(defaults.Cache.Path))
	})

	It("rejects malformed TOML", func() {
		path := filepath.Join(tmpDir, "basecamp.toml")
		Expect(os.WriteFile(path, []byte("[server\nlisten ="), 0o600)).To(Succeed())

		_, err := config.InitViper(path)
		Expect(err).To(HaveOccurred())
	})

	It("lets environment variables override file values", func() {
		data := "[server]\nlisten = \":9999\"\n"
		path := filepath.Join(tmpDir, "basecamp.toml")
		Expect(os.WriteFile(path, []byte(data), 0o600)).To(Succeed())

		os.Setenv("BASECAMP_SERVER_LISTEN", ":7777")
		defer os.Unsetenv("BASECAMP_SERVER_LISTEN")

		v, err := config.InitViper(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(config.FromViper(v).Server.Listen).To(Equal(":7777"))
	})
})

var _ = Describe("BindRegisteredFlags", func() {
	It("lets a set flag override environment and file values", func() {
		v, err := config.InitViper("")
		Expect(err).NotTo(HaveOccurred())

		var listen string
		cmd := &cobra.Command{Use: "test"}
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)
		Expect(cmd.Flags().Set("listen", ":6060")).To(Succeed())

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})
		Expect(v.GetString("server.listen")).To(Equal(":6060"))
	})

	It("keeps the default when the flag is not set", func() {
		v, err := config.InitViper("")
		Expect(err).NotTo(HaveOccurred())

		var listen string
		cmd := &cobra.Command{Use: "test"}
		config.AddStringFlag(cmd, config.Flags, config.FlagListen, &listen)

		config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagListen})
		Expect(v.GetString("server.listen")).To(Equal(config.NewDefaultConfig().Server.Listen))
	})
})
