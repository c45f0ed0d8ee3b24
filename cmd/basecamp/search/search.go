// Package searchcmder provides the search command for semantic search
// over the knowledge base of a running basecamp server.
package searchcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/summitchronicles/basecamp/api"
)

const defaultServer = "http://localhost:8090"

type searchCommander struct {
	query     string
	limit     int
	threshold float64
	server    string
	asJSON    bool
}

const searchLongDesc string = `Search the knowledge base of a running basecamp server.

Results are ranked by cosine similarity between the query and stored
chunks; the relevance column additionally reflects keyword matches in
titles, tags and content.

Example:
  basecamp search "acclimatization schedule"
  basecamp search "summit push nutrition" --limit 10 --threshold 0.5
  basecamp search "gear list" --server http://localhost:8090 --json`

const searchShortDesc string = "Search the knowledge base"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cmder.query = args[0]
			return cmder.run()
		},
	}

	cmd.Flags().IntVarP(&cmder.limit, "limit", "k", 5, "Number of results to return")
	cmd.Flags().Float64VarP(&cmder.threshold, "threshold", "t", 0.3, "Minimum cosine similarity")
	cmd.Flags().StringVar(&cmder.server, "server", defaultServer, "Basecamp API server URL")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Output raw JSON")

	return cmd
}

func (c *searchCommander) run() error {
	target := fmt.Sprintf("%s/v1/search?query=%s&limit=%d&threshold=%s",
		c.server,
		url.QueryEscape(c.query),
		c.limit,
		strconv.FormatFloat(c.threshold, 'f', -1, 32),
	)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("querying %s: %w", c.server, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp api.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("search failed: %s", errResp.Error)
		}
		return fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	if c.asJSON {
		fmt.Println(string(body))
		return nil
	}

	var output api.SearchResponse
	if err := json.Unmarshal(body, &output); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if output.Count == 0 {
		fmt.Println("No results found.")
		return nil
	}

	for i, result := range output.Results {
		fmt.Printf("%d. %s  (similarity %.3f, relevance %.3f)\n", i+1, result.Title, result.Similarity, result.Relevance)
		if result.Category != "" {
			fmt.Printf("   category: %s\n", result.Category)
		}
		fmt.Printf("   %s\n\n", result.Snippet)
	}

	return nil
}
