package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/dish-catalog/internal/pipeline"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete non-food assets from the media store",
	Long:  "Deletes the assets the classifier rejects, or the ids listed in --ids-file (one per line, # comments allowed), in paced batches.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		prefix, _ := cmd.Flags().GetString("prefix")
		idsFile, _ := cmd.Flags().GetString("ids-file")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		if err := cfg.ValidatePrune(); err != nil {
			return err
		}

		var ids []string
		if idsFile != "" {
			f, err := os.Open(idsFile)
			if err != nil {
				return eris.Wrap(err, "open ids file")
			}
			ids, err = readIDs(f)
			_ = f.Close()
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(os.Stderr, "No ids to delete.")
				return nil
			}
		}

		env, err := initPipeline(ctx, envOptions{})
		if err != nil {
			return err
		}
		defer env.Close()

		res, err := env.Pipeline.Prune(ctx, pipeline.PruneOptions{Prefix: prefix, IDs: ids, DryRun: dryRun})
		if res != nil {
			if dryRun {
				formatCandidates(os.Stdout, res.Candidates)
			} else if res.Outcome != nil {
				formatOutcome(os.Stdout, res.Outcome)
			}
		}
		return err
	},
}

// readIDs reads one asset id per line, skipping blanks and # comments.
func readIDs(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, eris.Wrap(sc.Err(), "read ids")
}

func init() {
	pruneCmd.Flags().String("prefix", "", "media store folder prefix (default from config)")
	pruneCmd.Flags().String("ids-file", "", "file of asset ids to delete instead of classifying")
	pruneCmd.Flags().Bool("dry-run", false, "list what would be deleted")
	rootCmd.AddCommand(pruneCmd)
}
