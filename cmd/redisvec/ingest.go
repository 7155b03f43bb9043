package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/redisvec"
)

const ingestLongDesc string = `Add texts from a file to the configured index.

Each line of the input is one JSON record:
  {"text": "...", "metadata": {"source": "wiki"}, "key": "doc:docs:42"}

"metadata" and "key" are optional. With --plain every non-empty line is a text
without metadata. Use "-" to read from stdin. The index is created from the
first embedding when it does not exist yet.

Example:
  redisvec ingest notes.jsonl
  cat README.md | redisvec ingest --plain -`

const ingestShortDesc string = "Add texts from a JSONL or plain-text file"

// maxLineBytes bounds one input line.
const maxLineBytes = 16 << 20

type ingestCommander struct {
	plain     bool
	batchSize int
}

// record is one input line.
type record struct {
	Key      string         `json:"key"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

func newIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			in, closeFn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := readRecords(in, cmder.plain)
			if err != nil {
				return err
			}
			return withStore(cmd.Context(), rt, func(ctx context.Context, s *redisvec.Store) error {
				keys, err := cmder.ingest(ctx, s, records)
				rt.logger.Info("Ingest finished",
					zap.Int("records", len(records)),
					zap.Int("committed", len(keys)),
					zap.Error(err),
				)
				for _, k := range keys {
					if _, werr := fmt.Fprintln(cmd.OutOrStdout(), k); werr != nil {
						return werr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Treat every non-empty line as a text")
	cmd.Flags().IntVar(&cmder.batchSize, "batch-size", 0, "Records per pipelined write (default: ingest.batch_size)")

	return cmd
}

func (c *ingestCommander) ingest(ctx context.Context, s *redisvec.Store, records []record) ([]string, error) {
	texts := make([]string, len(records))
	metadatas := make([]map[string]any, len(records))
	keys := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
		metadatas[i] = r.Metadata
		keys[i] = r.Key
	}

	opts := []redisvec.AddOption{redisvec.WithMetadatas(metadatas), redisvec.WithKeys(keys)}
	if c.batchSize > 0 {
		opts = append(opts, redisvec.WithAddBatchSize(c.batchSize))
	}
	return s.AddTexts(ctx, texts, opts...)
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// readRecords parses the input. Blank lines are skipped; a malformed line fails the
// whole read with its line number.
func readRecords(r io.Reader, plain bool) ([]record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var out []record
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if plain {
			out = append(out, record{Text: text})
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", redisvec.ErrValidation, line, err)
		}
		if rec.Text == "" {
			return nil, fmt.Errorf("%w: line %d: missing \"text\"", redisvec.ErrValidation, line)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("input has no records")
	}
	return out, nil
}
