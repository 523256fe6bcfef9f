package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/zenith/internal/insights"
	"github.com/felixgeelhaar/zenith/internal/session"
)

var headingStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#7D56F4"))

const distributionBarWidth = 30

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show the emotional insights report",
	Run: func(cmd *cobra.Command, args []string) {
		obs := newObserver()
		defer obs.Close()
		cfg := loadConfig(obs)
		store, r := openStore(obs)
		defer r.Close()

		sessions := store.GetAll(context.Background())

		distribution := insights.Distribution(sessions)
		report := struct {
			Distribution    []insights.DistributionEntry `json:"distribution"`
			Milestones      []insights.Milestone         `json:"milestones"`
			Progress        insights.Progress            `json:"progress"`
			Averages        insights.AverageMetrics      `json:"averages"`
			Words           []session.WordCount          `json:"words"`
			Recommendations []string                     `json:"recommendations"`
			WeeklyRate      float64                      `json:"weeklyRate"`
		}{
			Distribution:    distribution,
			Milestones:      insights.Milestones(sessions),
			Progress:        insights.Summary(sessions),
			Averages:        insights.Averages(sessions),
			Words:           insights.WordCloud(sessions, cfg.WordCloudLimit),
			Recommendations: insights.Recommend(sessions, distribution, cfg.RecommendationLimit),
			WeeklyRate:      insights.WeeklyRate(sessions),
		}

		if ciMode {
			printJSON(report)
			return
		}

		fmt.Println(headingStyle.Render("Emotion Distribution"))
		if len(report.Distribution) == 0 {
			fmt.Println("  No emotions recorded yet.")
		}
		for _, entry := range report.Distribution {
			bar := strings.Repeat("█", int(entry.Percentage/100*distributionBarWidth))
			colored := lipgloss.NewStyle().Foreground(lipgloss.Color(entry.Color)).Render(bar)
			fmt.Printf("  %-10s %5.1f%%  %s\n", entry.Name, entry.Percentage, colored)
		}

		fmt.Println()
		fmt.Println(headingStyle.Render("Milestones"))
		for _, m := range report.Milestones {
			fmt.Printf("  %s %s: %s\n", m.Icon, m.Title, m.Value)
		}

		fmt.Println()
		fmt.Println(headingStyle.Render("Progress"))
		fmt.Printf("  Trend: %s, consistency %d/100, %d sessions, %.1f per week\n",
			report.Progress.ImprovementTrend,
			report.Progress.ConsistencyScore,
			report.Progress.TotalSessions,
			report.WeeklyRate)
		fmt.Printf("  Typical session: %d messages, %ds, %d emotions\n",
			report.Averages.AvgMessages,
			report.Averages.AvgDuration,
			report.Averages.AvgEmotions)

		if len(report.Words) > 0 {
			fmt.Println()
			fmt.Println(headingStyle.Render("Frequent Words"))
			words := make([]string, 0, len(report.Words))
			for _, wc := range report.Words {
				words = append(words, fmt.Sprintf("%s (%d)", wc.Word, wc.Frequency))
			}
			fmt.Println("  " + strings.Join(words, ", "))
		}

		fmt.Println()
		fmt.Println(headingStyle.Render("Recommendations"))
		for _, rec := range report.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	},
}

func init() {
	RootCmd.AddCommand(insightsCmd)
}
