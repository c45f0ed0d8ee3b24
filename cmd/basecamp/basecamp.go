// Package basecampcmder
package basecampcmder

import (
	askcmder "github.com/summitchronicles/basecamp/cmd/basecamp/ask"
	searchcmder "github.com/summitchronicles/basecamp/cmd/basecamp/search"
	servecmder "github.com/summitchronicles/basecamp/cmd/basecamp/serve"
	versioncmder "github.com/summitchronicles/basecamp/cmd/basecamp/version"
	"github.com/spf13/cobra"
)

const basecampLongDesc string = `Basecamp is a retrieval-augmented knowledge service.

It ingests free-text documents, retrieves them by semantic similarity,
and answers questions grounded in the retrieved text.

Run the service using:
  basecamp serve       Run the knowledge API server
  basecamp search      Search a running server's knowledge base
  basecamp ask         Ask a running server a question`

const basecampShortDesc string = "Basecamp - grounded question answering"

func NewBasecampCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "basecamp",
		Short: basecampShortDesc,
		Long:  basecampLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "", "Path to a TOML config file")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
