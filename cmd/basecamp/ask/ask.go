// Package askcmder provides the ask command for grounded question
// answering against a running basecamp server.
package askcmder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/summitchronicles/basecamp/api"
	"github.com/summitchronicles/basecamp/pkg/answer"
)

const defaultServer = "http://localhost:8090"

type askCommander struct {
	question string
	direct   bool
	context  string
	server   string
	asJSON   bool
}

const askLongDesc string = `Ask the knowledge base a question.

By default the question is answered with retrieval: the most similar
stored chunks ground the answer and are listed as sources with a
confidence score. With --direct the generation model is asked the
question as-is, without retrieval, and the response carries no sources.

Example:
  basecamp ask "What is the next expedition?"
  basecamp ask "How long should an acclimatization rotation be?" --json
  basecamp ask "Explain alpine style" --direct`

const askShortDesc string = "Ask the knowledge base a question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cmder.question = args[0]
			return cmder.run()
		},
	}

	cmd.Flags().BoolVar(&cmder.direct, "direct", false, "Skip retrieval and ask the model directly")
	cmd.Flags().StringVar(&cmder.context, "context", "", "Extra free-form context for a direct question")
	cmd.Flags().StringVar(&cmder.server, "server", defaultServer, "Basecamp API server URL")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Output raw JSON")

	return cmd
}

func (c *askCommander) run() error {
	useRetrieval := !c.direct
	payload, err := json.Marshal(api.AskRequest{
		Question:     c.question,
		UseRetrieval: &useRetrieval,
		Context:      c.context,
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Post(c.server+"/v1/ask", "application/json", bytes.NewReader(payload))
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
			return fmt.Errorf("ask failed: %s", errResp.Error)
		}
		return fmt.Errorf("ask failed: status %d", resp.StatusCode)
	}

	if c.asJSON {
		fmt.Println(string(body))
		return nil
	}

	var output answer.Response
	if err := json.Unmarshal(body, &output); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Println(output.Answer)

	if len(output.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, source := range output.Sources {
			fmt.Printf("  - %s (similarity %.3f)\n", source.Title, source.Similarity)
		}
	}
	fmt.Printf("\nConfidence: %.2f (%s)\n", output.Confidence, output.Method)

	return nil
}
