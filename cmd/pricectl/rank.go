package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/savetide/backend/internal/bootstrap"
	"github.com/savetide/backend/internal/domain"
	"github.com/spf13/cobra"
)

// savedResponse is a provider search response written to disk
type savedResponse struct {
	SearchParameters struct {
		Q string `json:"q"`
	} `json:"search_parameters"`
	ShoppingResults []domain.RawOffer `json:"shopping_results"`
}

func newRankCommand(opts *options) *cobra.Command {
	var (
		file  string
		query string
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a saved shopping response offline",
		Long: `Run the normalize, dedup and rank pipeline over a saved provider response.
The input is either a full search response with "shopping_results" or a bare
JSON array of offers. No network calls are made.`,
		Example: `  pricectl rank --file results.json
  curl -s "$URL" | pricectl rank --file - --query "air fryer"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			savedQuery, raw, err := decodeOffers(data)
			if err != nil {
				return err
			}
			if query == "" {
				query = savedQuery
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			merchants, err := cfg.LoadMerchants()
			if err != nil {
				return err
			}
			pipeline, err := bootstrap.NewPipeline(cfg, merchants)
			if err != nil {
				return err
			}

			result, report := pipeline.BuildReport(query, raw)
			return opts.renderer(cmd).ranked(result, report)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `saved response file, or "-" for stdin`)
	cmd.Flags().StringVarP(&query, "query", "q", "", "query used for titles and links (default: search_parameters.q)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}

// decodeOffers accepts a full search response or a bare offer array
func decodeOffers(data []byte) (string, []domain.RawOffer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "", nil, errors.New("input is empty")
	}

	if trimmed[0] == '[' {
		var offers []domain.RawOffer
		if err := json.Unmarshal(trimmed, &offers); err != nil {
			return "", nil, fmt.Errorf("decode offer array: %w", err)
		}
		return "", offers, nil
	}

	var resp savedResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return "", nil, fmt.Errorf("decode search response: %w", err)
	}
	return resp.SearchParameters.Q, resp.ShoppingResults, nil
}
