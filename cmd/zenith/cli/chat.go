package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/zenith/internal/replyclient"
	"github.com/felixgeelhaar/zenith/internal/session"
	"github.com/felixgeelhaar/zenith/internal/ui"
	"github.com/felixgeelhaar/zenith/internal/ui/tui"
)

var (
	chatReplyURL string
	chatTags     []string
	chatNotes    string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session",
	Long: `Chat opens the interactive session view. Messages go to the reply
service; when you finish, the transcript is classified and saved.`,
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		cfg := loadConfig(obs)
		store, r := openStore(obs)
		defer r.Close()

		replyURL := chatReplyURL
		if replyURL == "" {
			replyURL = cfg.ReplyURL
		}
		client := replyclient.New(replyURL)

		if err := client.Health(context.Background()); err != nil {
			obs.Log().Warn().Err(err).Msg("Reply service not reachable, replies will fail")
		}

		send := func(remoteID, message string) (string, string, error) {
			resp, err := client.Chat(context.Background(), remoteID, message)
			if err != nil {
				return "", remoteID, err
			}
			return resp.Reply, resp.SessionID, nil
		}

		program := tea.NewProgram(tui.NewModel(send), tea.WithAltScreen())
		finalModel, err := program.Run()
		if err != nil {
			fmt.Printf("Chat failed: %v\n", err)
			os.Exit(1)
		}

		transcript := finalModel.(tui.Model).Transcript()
		if len(transcript) == 0 {
			fmt.Println("Nothing to save.")
			return
		}

		ctx := context.Background()
		classifier := newClassifier(obs, cfg)
		emotions := classifier.Classify(ctx, userText(transcript))

		sess, err := store.Save(ctx, transcript, session.Metadata{
			Emotions: emotions,
			Tags:     chatTags,
			Notes:    chatNotes,
		})
		if err != nil {
			obs.Log().Fatal().Err(err).Msg("Failed to save session")
		}

		fmt.Printf("Session %s saved.\n", sess.ID)
		fmt.Println(ui.RenderEmotions(sess.Emotions))
	},
}

func userText(messages []session.Message) string {
	var parts []string
	for _, msg := range messages {
		if msg.Role == session.RoleUser {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n")
}

func init() {
	RootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatReplyURL, "reply-url", "", "Reply service URL (default from config)")
	chatCmd.Flags().StringSliceVar(&chatTags, "tag", nil, "Tags to attach to the saved session")
	chatCmd.Flags().StringVar(&chatNotes, "notes", "", "Notes to attach to the saved session")
}
