package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/zenith/internal/emotion"
	"github.com/felixgeelhaar/zenith/internal/session"
	"github.com/felixgeelhaar/zenith/internal/ui"
)

var (
	listEmotion  string
	listTag      string
	listLimit    int
	listMinDur   int
	listArchived bool
	editNotes    string
	editTags     []string
	importMerge  bool
	archiveDays  int
	clearConfirm bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage recorded sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		ctx := context.Background()
		var sessions []session.Session
		if listArchived {
			sessions = store.Archived(ctx)
		} else {
			sessions = store.Recent(ctx, listLimit)
		}

		if listEmotion != "" {
			sessions = intersectByID(sessions, store.ByEmotion(ctx, emotion.Label(listEmotion)))
		}
		if listMinDur > 0 {
			sessions = intersectByID(sessions, store.ByMinDuration(ctx, listMinDur))
		}
		if listTag != "" {
			sessions = filterByTag(sessions, listTag)
		}

		if ciMode {
			printJSON(sessions)
			return
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return
		}
		for _, sess := range sessions {
			printSessionLine(sess)
		}
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session transcript",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		sess := store.GetByID(context.Background(), args[0])
		if sess == nil {
			fmt.Printf("Session %s not found.\n", args[0])
			os.Exit(1)
		}

		if ciMode {
			printJSON(sess)
			return
		}
		printSessionLine(*sess)
		if len(sess.Tags) > 0 {
			fmt.Printf("Tags: %v\n", sess.Tags)
		}
		if sess.Notes != "" {
			fmt.Printf("Notes: %s\n", sess.Notes)
		}
		fmt.Println()
		fmt.Println(ui.RenderTranscript(sess.Messages))
	},
}

var sessionsSearchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search session message content",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		sessions := store.Search(context.Background(), args[0])
		if ciMode {
			printJSON(sessions)
			return
		}
		if len(sessions) == 0 {
			fmt.Println("No matching sessions.")
			return
		}
		for _, sess := range sessions {
			printSessionLine(sess)
		}
	},
}

var sessionsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a session's notes or tags",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		update := session.Update{}
		if cmd.Flags().Changed("notes") {
			update.Notes = &editNotes
		}
		if cmd.Flags().Changed("tag") {
			update.Tags = editTags
		}

		sess, err := store.Update(context.Background(), args[0], update)
		if err != nil {
			fmt.Printf("Failed to update session: %v\n", err)
			os.Exit(1)
		}
		printSessionLine(*sess)
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		if !store.Delete(context.Background(), args[0]) {
			fmt.Println("Failed to delete session.")
			os.Exit(1)
		}
		fmt.Printf("Session %s deleted.\n", args[0])
	},
}

var sessionsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all sessions as JSON",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		text := store.ExportText(context.Background())
		if len(args) == 0 {
			fmt.Println(text)
			return
		}
		if err := os.WriteFile(args[0], []byte(text), 0600); err != nil {
			fmt.Printf("Failed to write export: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sessions exported to %s\n", args[0])
	},
}

var sessionsImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import sessions from a JSON export",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Failed to read import file: %v\n", err)
			os.Exit(1)
		}

		if !store.Import(context.Background(), string(data), importMerge) {
			fmt.Println("Import rejected: file is not a session export.")
			os.Exit(1)
		}
		fmt.Printf("Imported sessions from %s\n", args[0])
	},
}

var sessionsArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Move old sessions to the archive",
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		cfg := loadConfig(obs)
		store, r := openStore(obs)
		defer r.Close()

		days := archiveDays
		if days <= 0 {
			days = cfg.ArchiveDays
		}

		result, err := store.ArchiveOlderThan(context.Background(), days)
		if err != nil {
			obs.Log().Fatal().Err(err).Msg("Archive failed")
		}
		fmt.Printf("Archived %d sessions, %d remain active.\n", result.ArchivedCount, result.RemainingCount)
	},
}

var sessionsUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show storage usage",
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		usage := store.Usage(context.Background())
		if ciMode {
			printJSON(usage)
			return
		}
		fmt.Printf("Active:  %.2f KB\n", usage.ActiveKB)
		fmt.Printf("Archive: %.2f KB\n", usage.ArchiveKB)
		fmt.Printf("Total:   %.2f KB\n", usage.TotalKB)
	},
}

var sessionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary statistics",
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		stats := store.Stats(context.Background())
		if ciMode {
			printJSON(stats)
			return
		}
		fmt.Printf("Sessions:       %d\n", stats.Total)
		fmt.Printf("Total duration: %s\n", formatDuration(stats.TotalDuration))
		fmt.Printf("Avg duration:   %s\n", formatDuration(stats.AvgDuration))
		fmt.Printf("Messages:       %d (avg %d per session)\n", stats.TotalMessages, stats.AvgMessages)
		if stats.FirstSession != nil {
			fmt.Printf("First session:  %s\n", stats.FirstSession.Format("2006-01-02"))
		}
		if stats.LastSession != nil {
			fmt.Printf("Last session:   %s\n", stats.LastSession.Format("2006-01-02"))
		}
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all active sessions",
	Run: func(cmd *cobra.Command, args []string) {
		if !clearConfirm {
			fmt.Println("Refusing to clear without --yes.")
			os.Exit(1)
		}

		obs := newObserver()
		defer obs.Close()
		store, r := openStore(obs)
		defer r.Close()

		if !store.ClearAll(context.Background()) {
			fmt.Println("Failed to clear sessions.")
			os.Exit(1)
		}
		fmt.Println("All active sessions cleared.")
	},
}

func init() {
	RootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsSearchCmd)
	sessionsCmd.AddCommand(sessionsEditCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsExportCmd)
	sessionsCmd.AddCommand(sessionsImportCmd)
	sessionsCmd.AddCommand(sessionsArchiveCmd)
	sessionsCmd.AddCommand(sessionsUsageCmd)
	sessionsCmd.AddCommand(sessionsStatsCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)

	sessionsListCmd.Flags().StringVarP(&listEmotion, "emotion", "e", "", "Only sessions containing this emotion")
	sessionsListCmd.Flags().StringVarP(&listTag, "tag", "t", "", "Only sessions with a tag matching this glob")
	sessionsListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum sessions to list")
	sessionsListCmd.Flags().IntVar(&listMinDur, "min-duration", 0, "Only sessions at least this many seconds long")
	sessionsListCmd.Flags().BoolVar(&listArchived, "archived", false, "List archived sessions instead of active ones")
	sessionsEditCmd.Flags().StringVar(&editNotes, "notes", "", "Replace the session notes")
	sessionsEditCmd.Flags().StringSliceVar(&editTags, "tag", nil, "Replace the session tags")
	sessionsImportCmd.Flags().BoolVar(&importMerge, "merge", false, "Merge with existing sessions instead of replacing")
	sessionsArchiveCmd.Flags().IntVar(&archiveDays, "days", 0, "Archive sessions older than this many days (default from config)")
	sessionsClearCmd.Flags().BoolVar(&clearConfirm, "yes", false, "Confirm deletion")
}

// filterByTag keeps sessions with at least one tag matching the glob
// pattern, e.g. "work*" or "mood/**".
func filterByTag(sessions []session.Session, pattern string) []session.Session {
	var out []session.Session
	for _, sess := range sessions {
		for _, tag := range sess.Tags {
			match, err := doublestar.Match(pattern, tag)
			if err == nil && match {
				out = append(out, sess)
				break
			}
		}
	}
	return out
}

func intersectByID(base, filter []session.Session) []session.Session {
	allowed := make(map[string]bool, len(filter))
	for _, sess := range filter {
		allowed[sess.ID] = true
	}
	var out []session.Session
	for _, sess := range base {
		if allowed[sess.ID] {
			out = append(out, sess)
		}
	}
	return out
}

func printSessionLine(sess session.Session) {
	fmt.Printf("%s  %s  %s  %s\n",
		sess.ID,
		sess.Date.Format("2006-01-02 15:04"),
		formatDuration(sess.Duration),
		emotion.Summary(sess.Emotions))
}

func formatDuration(seconds int) string {
	return time.Duration(seconds * int(time.Second)).String()
}
