package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/research-session/internal"
	"github.com/spf13/cobra"
)

var (
	newsRefresh    bool
	newsClearCache bool
	newsAnalyse    int
	newsRSSBase    string
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show today's legal news",
	Long: `Show legal news headlines. The feed is cached for four hours; use
--refresh to fetch again. --analyse N opens headline N as a research query
in a new session.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		cacheManager := internal.NewCacheManager(a.paths.CacheDir)
		if newsClearCache {
			if err := cacheManager.ClearCache(); err != nil {
				internal.LogWarn("Failed to clear cache: %v", err)
			} else {
				internal.LogInfo("Cache cleared")
			}
		}

		opts := []internal.NewsOption{internal.WithNewsCache(cacheManager)}
		if newsRSSBase != "" {
			opts = append(opts, internal.WithRSSBase(newsRSSBase))
		}
		feed := internal.NewNewsFeed(a.cfg.ResolvedNewsURL(), opts...)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		var resp *internal.NewsResponse
		err = internal.ShowProgress(ctx, "Fetching legal news", func() error {
			var fetchErr error
			resp, fetchErr = feed.Fetch(ctx, newsRefresh)
			return fetchErr
		})
		if err != nil {
			return err
		}

		if newsAnalyse > 0 {
			if newsAnalyse > len(resp.News) {
				return fmt.Errorf("no headline %d (feed has %d)", newsAnalyse, len(resp.News))
			}
			item := resp.News[newsAnalyse-1]
			return openLink(ctx, cmd, a, internal.ResearchLink("/research", item.AnalysePrompt))
		}

		displayNews(cmd.OutOrStdout(), resp, time.Now())
		return nil
	},
}

func displayNews(out io.Writer, resp *internal.NewsResponse, now time.Time) {
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📰 Legal news (%s)", resp.Source)))
	fmt.Fprintln(out)

	for i, item := range resp.News {
		fmt.Fprintf(out, "%s %s\n", countStyle.Render(fmt.Sprintf("%d.", i+1)), titleStyle.Render(item.Title))
		if item.Date != "" {
			fmt.Fprintln(out, messageContentStyle.Render(dateStyle.Render(item.Date)))
		}
		if item.Summary != "" {
			fmt.Fprintln(out, messageContentStyle.Render(wrapText(item.Summary, 80)))
		}
		if item.Link != "" && item.Link != "#" {
			fmt.Fprintln(out, messageContentStyle.Render(idStyle.Render(item.Link)))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, timestampStyle.Render(fmt.Sprintf("Updated %s • next update %s",
		humanize.RelTime(resp.LastUpdated, now, "ago", "from now"),
		humanize.RelTime(resp.NextUpdate, now, "ago", "from now"))))
	fmt.Fprintln(out, idStyle.Render("💡 Tip: research-session news --analyse <n>"))
}

func init() {
	rootCmd.AddCommand(newsCmd)
	newsCmd.Flags().BoolVar(&newsRefresh, "refresh", false, "Fetch the feed even if the cache is fresh")
	newsCmd.Flags().BoolVar(&newsClearCache, "clear-cache", false, "Clear the news cache before running")
	newsCmd.Flags().IntVar(&newsAnalyse, "analyse", 0, "Analyse headline n in a new session")
	newsCmd.Flags().StringVar(&newsRSSBase, "rss-base", "", "Override the RSS search endpoint")
	_ = newsCmd.Flags().MarkHidden("rss-base")
}
