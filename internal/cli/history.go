package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/lovincyrus/databag/internal/store"
)

// HistoryCommand lists or prunes the recorded runs.
type HistoryCommand struct {
	Limit int           `short:"n" long:"limit" default:"20" description:"Number of entries to show"`
	Prune time.Duration `long:"prune" value-name:"AGE" description:"Delete entries older than AGE (e.g. 720h) instead of listing"`
	JSON  bool          `long:"json" description:"Print entries as JSON"`

	app *app
}

func (c *HistoryCommand) Execute([]string) error {
	a := c.app
	path := a.historyPath()
	if path == "" {
		return errors.New("no history database configured (use --history-db or $DATABAG_HISTORY_DB)")
	}

	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if c.Prune > 0 {
		n, err := db.PruneHistory(time.Now().Add(-c.Prune))
		if err != nil {
			return fmt.Errorf("pruning history: %w", err)
		}
		fmt.Fprintf(a.stdout, "Pruned %d entries.\n", n)
		return nil
	}

	entries, err := db.History(c.Limit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if c.JSON {
		if entries == nil {
			entries = []store.HistoryEntry{}
		}
		out, err := render(entries, "json")
		if err != nil {
			return err
		}
		_, err = a.stdout.Write(out)
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.stdout, "No history entries.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(a.stdout, "%-20s %-8s %-16s %-10s %-16s %s (%s)\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Action, e.ItemID, e.Versions, e.KeyFingerprint, e.Outcome, e.Source)
	}
	return nil
}
