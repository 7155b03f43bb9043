package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/redisvec"
)

const indexLongDesc string = `Manage the configured index.

Example:
  redisvec index create --dims 1536
  redisvec index info
  redisvec index drop --delete-documents`

const indexShortDesc string = "Create, inspect or drop the index"

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: indexShortDesc,
		Long:  indexLongDesc,
	}

	cmd.AddCommand(newIndexCreateCmd())
	cmd.AddCommand(newIndexInfoCmd())
	cmd.AddCommand(newIndexDropCmd())

	return cmd
}

func newIndexCreateCmd() *cobra.Command {
	var dims int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create the index unless it already exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			return withStore(cmd.Context(), rt, func(ctx context.Context, s *redisvec.Store) error {
				if err := s.CreateIndex(ctx, dims); err != nil {
					return err
				}
				return printIndex(ctx, cmd.OutOrStdout(), s)
			})
		},
	}

	cmd.Flags().IntVar(&dims, "dims", 0, "Vector dimension (default: index.vector.dims)")

	return cmd
}

func newIndexInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the index name, key prefix and vector dimension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			return withStore(cmd.Context(), rt, func(ctx context.Context, s *redisvec.Store) error {
				return printIndex(ctx, cmd.OutOrStdout(), s)
			})
		},
	}
}

func newIndexDropCmd() *cobra.Command {
	var deleteDocuments bool

	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			return withStore(cmd.Context(), rt, func(ctx context.Context, s *redisvec.Store) error {
				dropped, err := s.DropIndex(ctx, deleteDocuments)
				if err != nil {
					return err
				}
				if !dropped {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "index %s does not exist\n", s.IndexName())
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "dropped index %s\n", s.IndexName())
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&deleteDocuments, "delete-documents", false, "Also delete the records under the key prefix")

	return cmd
}

func printIndex(ctx context.Context, w io.Writer, s *redisvec.Store) error {
	dims, err := s.Dimensions(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "index:        %s\nkey prefix:   %s\ndimensions:   %d\nrange search: %t\n",
		s.IndexName(), s.KeyPrefix(), dims, s.SupportsRangeQueries())
	return err
}
