package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/redisvec"
)

var (
	rankStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const previewRunes = 240

type searchCommander struct {
	query        string
	k            int
	minRelevance float64
	maxDistance  float64
	filter       string
	asJSON       bool
}

const searchLongDesc string = `Run a similarity search over the configured index.

Hits are ordered closest first. --min-relevance drops hits whose relevance
score is lower. --max-distance switches to a range query that returns every
record within that distance (up to -k); it needs RediSearch 2.6 or newer.

--filter takes a JSON filter, typed by the declared metadata schema:
  {"field": "source", "value": "wiki"}
  {"and": [{"field": "year", "op": "gte", "value": 2020}, {"field": "title", "op": "like", "value": "redis*"}]}

Example:
  redisvec search "how do I rotate keys"
  redisvec search "release notes" -k 10 --filter '{"field":"source","value":"blog"}'
  redisvec search "outage" --max-distance 0.3 --json`

const searchShortDesc string = "Similarity search over the index"

// hit is the JSON output form of one search result.
type hit struct {
	Key       string         `json:"key"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Distance  *float64       `json:"distance,omitempty"`
	Relevance *float64       `json:"relevance,omitempty"`
}

func newSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			rt, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			return withStore(cmd.Context(), rt, func(ctx context.Context, s *redisvec.Store) error {
				hits, err := cmder.search(ctx, s, cmd.Flags().Changed("min-relevance"), cmd.Flags().Changed("max-distance"))
				if err != nil {
					return err
				}
				if cmder.asJSON {
					return writeJSONHits(cmd.OutOrStdout(), hits)
				}
				return writeHits(cmd.OutOrStdout(), hits)
			})
		},
	}

	cmd.Flags().IntVarP(&cmder.k, "top", "k", redisvec.DefaultK, "Number of results to return")
	cmd.Flags().Float64Var(&cmder.minRelevance, "min-relevance", 0, "Drop hits with a lower relevance score")
	cmd.Flags().Float64Var(&cmder.maxDistance, "max-distance", 0, "Range query: return records within this distance")
	cmd.Flags().StringVar(&cmder.filter, "filter", "", "JSON metadata filter")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print one JSON object per hit")
	cmd.MarkFlagsMutuallyExclusive("min-relevance", "max-distance")

	return cmd
}

func (c *searchCommander) search(
	ctx context.Context, s *redisvec.Store, useRelevance, useRange bool,
) ([]hit, error) {
	opts := []redisvec.SearchOption{redisvec.WithK(c.k)}
	if c.filter != "" {
		f, err := parseFilter(s, c.filter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, redisvec.WithFilter(f))
	}

	if useRange {
		docs, err := s.SimilaritySearchLimitScore(ctx, c.query, c.maxDistance, opts...)
		if err != nil {
			return nil, err
		}
		out := make([]hit, len(docs))
		for i, d := range docs {
			out[i] = hit{Key: d.ID, Content: d.Content, Metadata: d.Metadata}
		}
		return out, nil
	}

	if useRelevance {
		opts = append(opts, redisvec.WithRelevanceThreshold(c.minRelevance))
	}
	scored, err := s.SimilaritySearchWithRelevanceScores(ctx, c.query, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]hit, len(scored))
	for i, d := range scored {
		distance, relevance := d.Distance, d.Relevance
		out[i] = hit{Key: d.ID, Content: d.Content, Metadata: d.Metadata, Distance: &distance, Relevance: &relevance}
	}
	return out, nil
}

func parseFilter(s *redisvec.Store, raw string) (redisvec.Filter, error) {
	var spec redisvec.FilterSpec
	if err := json.Unmarshal([]byte(raw), &spec); err != nil {
		return redisvec.Filter{}, fmt.Errorf("%w: --filter: %w", redisvec.ErrValidation, err)
	}
	return s.CompileFilter(&spec)
}

func writeJSONHits(w io.Writer, hits []hit) error {
	enc := json.NewEncoder(w)
	for i := range hits {
		if err := enc.Encode(hits[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeHits(w io.Writer, hits []hit) error {
	if len(hits) == 0 {
		_, err := fmt.Fprintln(w, dimStyle.Render("no results"))
		return err
	}

	var b strings.Builder
	for i, h := range hits {
		b.WriteString(rankStyle.Render(fmt.Sprintf("#%d", i+1)))
		b.WriteString(" ")
		b.WriteString(keyStyle.Render(h.Key))
		if h.Distance != nil {
			b.WriteString(" ")
			b.WriteString(scoreStyle.Render(fmt.Sprintf("distance=%.4f relevance=%.4f", *h.Distance, *h.Relevance)))
		}
		b.WriteString("\n")
		if meta := formatMetadata(h.Metadata); meta != "" {
			b.WriteString("   ")
			b.WriteString(metaStyle.Render(meta))
			b.WriteString("\n")
		}
		b.WriteString("   ")
		b.WriteString(previewStyle.Render(preview(h.Content)))
		b.WriteString("\n\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatMetadata(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	names := make([]string, 0, len(meta))
	for name := range meta {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%v", name, meta[name])
	}
	return strings.Join(parts, " ")
}

func preview(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes]) + "..."
}
