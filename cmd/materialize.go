package cmd

import (
	"context"
	"fmt"
	"io"

	"featuredrop/internal/observability"
	"featuredrop/internal/pipeline"
	"featuredrop/internal/ui"
	"featuredrop/internal/warehouse"
	"featuredrop/pkg/models"

	"github.com/spf13/cobra"
)

var materializeVerify bool

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "Copy the feature table into its materialized table",
	Long: `Read the source feature table, print a sample, and overwrite the
destination table with its full contents. The destination is read back and
sampled. With --verify, row counts and column sets of both tables are compared.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(sess warehouse.Session) error {
			return materialize(cmd.Context(), sess, appConfig.Pipeline, cmd.OutOrStdout(), logger, materializeVerify)
		})
	},
}

func init() {
	rootCmd.AddCommand(materializeCmd)
	materializeCmd.Flags().BoolVar(&materializeVerify, "verify", false, "compare row counts and columns of source and destination")
}

func materialize(ctx context.Context, sess warehouse.Session, cfg models.Pipeline, out io.Writer, log *observability.Logger, verify bool) error {
	dst, err := pipeline.NewMaterializer(cfg, out, log).Run(ctx, sess)
	if err != nil {
		return err
	}
	if !verify {
		return nil
	}

	src, err := sess.Table(ctx, cfg.SourceTable)
	if err != nil {
		return err
	}
	v, err := pipeline.VerifyMaterialization(ctx, src, dst)
	if err != nil {
		return err
	}
	ui.NewConsole(out).Info(fmt.Sprintf("Verified %s: %d rows, columns match %s", dst.Name(), v.DestinationRows, src.Name()))
	return nil
}
