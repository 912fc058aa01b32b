package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/dish-catalog/internal/pipeline"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the dish catalog from the media store",
	Long:  "Lists the inventory, classifies assets, builds the catalog, enriches it from the spreadsheet, persists it and writes the source and data files. With --prune, non-food assets are deleted from the media store.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		doPrune, _ := cmd.Flags().GetBool("prune")
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		prefix, _ := cmd.Flags().GetString("prefix")
		source, _ := cmd.Flags().GetString("source")
		data, _ := cmd.Flags().GetString("data")
		sheetFile, _ := cmd.Flags().GetString("sheet")
		noStore, _ := cmd.Flags().GetBool("no-store")

		if doPrune && !dryRun {
			if err := cfg.ValidatePrune(); err != nil {
				return err
			}
		}

		env, err := initPipeline(ctx, envOptions{
			withStore:  !noStore && !dryRun,
			withSheets: true,
			sheetFile:  sheetFile,
		})
		if err != nil {
			return err
		}
		defer env.Close()

		res, runErr := env.Pipeline.Run(ctx, pipeline.RunOptions{
			Prefix:     prefix,
			SourceFile: source,
			DataFile:   data,
			Prune:      doPrune,
			DryRun:     dryRun,
		})
		if res != nil && res.Report != nil {
			if res.RunID != "" {
				fmt.Fprintf(os.Stdout, "Run %s\n", res.RunID)
			}
			formatReport(os.Stdout, res.Report)
		}
		return runErr
	},
}

func init() {
	syncCmd.Flags().Bool("prune", false, "delete non-food assets from the media store")
	syncCmd.Flags().Bool("dry-run", false, "build and report without writing, persisting or deleting")
	syncCmd.Flags().String("prefix", "", "media store folder prefix (default from config)")
	syncCmd.Flags().String("source", "", "source file holding the catalog block (default from config)")
	syncCmd.Flags().String("data", "", "data file to write, .json or .yaml (default from config)")
	syncCmd.Flags().String("sheet", "", "local CSV or XLSX export to enrich from instead of the Sheets API")
	syncCmd.Flags().Bool("no-store", false, "do not persist the run or the catalog")
	rootCmd.AddCommand(syncCmd)
}
