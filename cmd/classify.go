package main

import (
	"os"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Print the classifier verdict for every asset",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		prefix, _ := cmd.Flags().GetString("prefix")
		onlyRejected, _ := cmd.Flags().GetBool("rejected")

		env, err := initPipeline(ctx, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		verdicts, err := env.Pipeline.Classify(ctx, prefix)
		if err != nil {
			return err
		}
		formatVerdicts(os.Stdout, verdicts, onlyRejected)
		return nil
	},
}

func init() {
	classifyCmd.Flags().String("prefix", "", "media store folder prefix (default from config)")
	classifyCmd.Flags().Bool("rejected", false, "only show non-food assets")
	rootCmd.AddCommand(classifyCmd)
}
