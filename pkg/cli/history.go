package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/TechXTT/oraconsole/pkg/config"
	"github.com/TechXTT/oraconsole/pkg/history"
)

// NewHistoryCmd builds the `history` command.
func NewHistoryCmd() *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the statement history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := history.Open(config.HistoryPath())
			if err != nil {
				return err
			}
			if clearAll {
				hist.Clear()
				return hist.Save()
			}
			for _, rec := range hist.Entries() {
				cmd.Printf("%s  %s\n", rec.CreatedAt.Local().Format(time.DateTime), rec.Name)
			}
			if latest, ok := hist.Latest(); ok {
				cmd.Printf("\nlatest:\n%s\n", latest.Data)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "remove every entry")
	return cmd
}
