package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"dealscope/pkg/aggregate"
	"dealscope/pkg/storage"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints weekly error-rate statistics from the persisted snapshots.",
	Long: `Prints a per-week error-rate table for each persisted snapshot. Works
entirely offline from the snapshot database; run fetch first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := storage.Open(dbPath(cmd))
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		infos, err := db.ListSnapshots(ctx)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No snapshots in the database; run fetch first.")
			return nil
		}

		associate, _ := cmd.Flags().GetString("associate")
		year, _ := cmd.Flags().GetInt("year")
		filter := aggregate.Filter{Associate: associate, Year: year}

		for _, info := range infos {
			snap, err := db.LoadSnapshot(ctx, info.Feed)
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s), fetched %s, %d records\n",
				info.Label, info.Feed, info.FetchedAt.Local().Format(time.RFC3339), info.RecordCount)

			window := aggregate.WeekWindow(snap.Records, filter)
			rates := aggregate.ErrorRateSeries(snap.Records, window, filter, aggregate.AssociateErrors)
			durations := aggregate.DurationSeries(snap.Records, window, filter)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "WEEK\tTOTAL\tERRORS\tRATE %\tAVG MIN\t")
			for i, p := range rates {
				avg := "-"
				if durations[i].Count > 0 {
					avg = fmt.Sprintf("%.2f", durations[i].Average)
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%.1f\t%s\t\n", p.Week, p.Total, p.Errors, p.Rate, avg)
			}
			w.Flush()
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringP("associate", "a", "", "Only count rows for this associate")
	statsCmd.Flags().IntP("year", "y", 0, "Only show weeks in this year")
}
