package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"dealscope/internal/utils"
	"dealscope/pkg/pipeline"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch every configured feed and persist the snapshots.",
	Long: `Fetches every configured feed, normalizes the rows, and overwrites the
persisted snapshot. On a fetch failure the previous snapshot is kept and
reported as cached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lock, err := utils.NewDBLock(dbPath(cmd))
		if err != nil {
			return err
		}
		if err := lock.Lock(); err != nil {
			return err
		}
		defer lock.Unlock()

		manager, db, err := newManager(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		states := manager.RefreshAll(context.Background())

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FEED\tSOURCE\tRECORDS\tFETCHED AT\t")
		for _, key := range manager.Keys() {
			st := states[key]
			fetched := "-"
			if !st.FetchedAt.IsZero() {
				fetched = st.FetchedAt.Local().Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", key, st.Provenance, len(st.Records), fetched)
		}
		w.Flush()

		for _, key := range manager.Keys() {
			if st := states[key]; st.Provenance != pipeline.ProvenanceLive && st.LastError != "" {
				fmt.Fprintf(os.Stderr, "%s: %s\n", key, st.LastError)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
