package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/zenith/internal/emotion"
	"github.com/felixgeelhaar/zenith/internal/ui"
)

var showWords bool

var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify the emotions in a text",
	Long: `Classify runs the emotion classifier over the given text, or over
stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		cfg := loadConfig(obs)

		var text string
		if len(args) > 0 {
			text = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				obs.Log().Fatal().Err(err).Msg("Failed to read stdin")
			}
			text = string(data)
		}

		classifier := newClassifier(obs, cfg)
		emotions := classifier.Classify(context.Background(), text)

		if ciMode {
			printJSON(emotions)
			return
		}

		fmt.Println(emotion.Summary(emotions))
		fmt.Println(ui.RenderEmotions(emotions))

		if showWords {
			words := emotion.EmotionalWords(text)
			if len(words) > 0 {
				parts := make([]string, 0, len(words))
				for _, w := range words {
					parts = append(parts, fmt.Sprintf("%s (%s)", w.Word, w.Label))
				}
				fmt.Println("Emotional words: " + strings.Join(parts, ", "))
			}
		}
	},
}

func init() {
	RootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().BoolVarP(&showWords, "words", "w", false, "Show the matched emotional words")
}
