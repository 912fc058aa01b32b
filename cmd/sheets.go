package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dish-catalog/internal/sheet"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Inspect the dish metadata spreadsheets",
}

var sheetsListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List spreadsheets in the configured drive folder",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		folder, _ := cmd.Flags().GetString("folder")
		if folder == "" {
			folder = cfg.Sheets.FolderID
		}
		if folder == "" {
			return missingFlag("folder", "sheets.folder_id")
		}

		client, err := initSheetsClient(ctx)
		if err != nil {
			return err
		}
		files, err := client.ListSpreadsheets(ctx, folder)
		if err != nil {
			return eris.Wrap(err, "sheets ls")
		}
		if len(files) == 0 {
			fmt.Fprintln(os.Stderr, "No spreadsheets found.")
			return nil
		}
		sheet.SortByModified(files)
		formatFiles(os.Stdout, files)
		return nil
	},
}

var sheetsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Parse the configured spreadsheet and report skipped rows",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		file, _ := cmd.Flags().GetString("file")
		src, err := initSheetSource(ctx, file)
		if err != nil {
			return err
		}
		if src == nil {
			return missingFlag("file", "sheets.spreadsheet_id, sheets.folder_id or sheets.file")
		}
		res, err := sheet.Load(ctx, src)
		if err != nil {
			return err
		}
		formatSheetCheck(os.Stdout, src.Describe(), res)
		return nil
	},
}

func missingFlag(flag, key string) error {
	return eris.Errorf("--%s or %s is required", flag, key)
}

func init() {
	sheetsListCmd.Flags().String("folder", "", "drive folder id (default from config)")
	sheetsCheckCmd.Flags().String("file", "", "local CSV or XLSX export instead of the Sheets API")
	sheetsCmd.AddCommand(sheetsListCmd)
	sheetsCmd.AddCommand(sheetsCheckCmd)
	rootCmd.AddCommand(sheetsCmd)
}
