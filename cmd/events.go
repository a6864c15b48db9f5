package cmd

import (
	"github.com/spf13/cobra"

	"github.com/curioledger/curio/internal/log"
	"github.com/curioledger/curio/internal/presentation"
	"github.com/curioledger/curio/internal/watcher"
)

var (
	eventsLimit  int
	eventsFollow bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the event journal",
	Long: `Events prints the journaled mutations, oldest first.

With --follow, curio keeps watching the ledger file and prints new entries
as other processes append them. Stop with Ctrl+C.

Examples:
  # Last 20 events
  curio events --limit 20

  # Stream new events as they happen
  curio events --follow`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer s.close()

		entries, err := s.svc.Events(eventsLimit)
		if err != nil {
			return err
		}
		if err := formatter(cmd).FormatEvents(presentation.FromJournalEntries(entries)); err != nil {
			return err
		}

		if !eventsFollow {
			return nil
		}

		lastSeq := int64(0)
		if len(entries) > 0 {
			lastSeq = entries[len(entries)-1].Seq
		}

		w, err := watcher.New(watcher.DefaultConfig(s.db.Path()))
		if err != nil {
			return err
		}
		defer func() { _ = w.Stop() }()

		changes, err := w.Start()
		if err != nil {
			return err
		}

		f := formatter(cmd)
		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case <-changes:
				fresh, err := s.svc.EventsSince(lastSeq)
				if err != nil {
					log.ErrorErr(log.CatEvents, "reading new events", err)
					continue
				}
				for _, entry := range fresh {
					if err := f.FormatEvent(presentation.FromJournalEntry(entry)); err != nil {
						return err
					}
					lastSeq = entry.Seq
				}
			}
		}
	},
}

func init() {
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "only show the newest N events (0 = all)")
	eventsCmd.Flags().BoolVarP(&eventsFollow, "follow", "f", false, "keep watching the ledger for new events")
	rootCmd.AddCommand(eventsCmd)
}
