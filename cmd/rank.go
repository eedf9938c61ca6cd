package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/ai"
	"github.com/spigell/collabmatch/internal/filtering"
	"github.com/spigell/collabmatch/internal/profile"
	"github.com/spigell/collabmatch/internal/ranking"
)

type rankEntry struct {
	Rank   int             `json:"rank"`
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Result *ai.MatchResult `json:"result"`
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank influencers for a business, or businesses for an influencer",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("business", "b", "", "rank influencers for this business id or name")
	rankCmd.Flags().StringP("influencer", "i", "", "rank businesses for this influencer id or name")
	rankCmd.Flags().IntP("top", "n", 0, "print only the best N entries. Default is all.")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with influencers to exclude. Default is unset.")

	viper.BindPFlag("exclude-file", rankCmd.Flags().Lookup("exclude-file"))
}

func rank(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, config, dir := bootstrap()

	businessKey := cmd.Flag("business").Value.String()
	influencerKey := cmd.Flag("influencer").Value.String()
	top, _ := cmd.Flags().GetInt("top")

	if strings.TrimSpace(businessKey) != "" && strings.TrimSpace(influencerKey) != "" {
		log.Fatal("only one of --business and --influencer can be set")
	}

	matcher, err := newMatcher(ctx, config, log)
	if err != nil {
		log.Fatal("building matcher", zap.Error(err))
	}

	// Filters and the final ranking score the same pairs.
	cached := ranking.NewCached(matcher)
	ranker := ranking.New(cached, config.Scoring.Workers, log)

	if strings.TrimSpace(influencerKey) != "" {
		rankBusinesses(ctx, cmd, log, dir, ranker, influencerKey, top)
		return
	}

	business, err := selectBusiness(dir, businessKey)
	if err != nil {
		log.Fatal("selecting business", zap.Error(err), zap.Strings("known businesses", dir.Businesses.Names()))
	}

	log.Info("ranking influencers", zap.String("business", business.Name), zap.Int("influencers", dir.Influencers.Len()))

	filters := prepareFilters(config, ranker, business, log)
	for _, status := range filters.Describe() {
		log.Debug("filter configured", zap.Any("status", status))
	}

	candidates, err := filters.RunFilters(ctx, dir.Influencers.Clone())
	if err != nil {
		log.Fatal("filtering failed", zap.Error(err))
	}

	if candidates.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no influencers left after filters"))
		return
	}

	ranked, err := ranker.Influencers(ctx, business, candidates.Items)
	if err != nil {
		log.Fatal("ranking influencers", zap.Error(err))
	}

	log.Debug("scored pairs cached", zap.Int("pairs", cached.Len()))

	entries := make([]rankEntry, 0, len(ranked))
	for idx, r := range ranking.Top(ranked, top) {
		entries = append(entries, rankEntry{Rank: idx + 1, ID: r.Influencer.ID, Name: r.Influencer.Name, Result: r.Result})
	}

	if err := printJSON(cmd.OutOrStdout(), entries); err != nil {
		log.Fatal("printing result", zap.Error(err))
	}
}

func rankBusinesses(ctx context.Context, cmd *cobra.Command, log *zap.Logger, dir *profile.Directory, ranker *ranking.Ranker, key string, top int) {
	influencer, err := selectInfluencer(dir, key)
	if err != nil {
		log.Fatal("selecting influencer", zap.Error(err), zap.Strings("known influencers", dir.Influencers.Names()))
	}

	log.Info("ranking businesses", zap.String("influencer", influencer.Name), zap.Int("businesses", dir.Businesses.Len()))

	ranked, err := ranker.Businesses(ctx, influencer, dir.Businesses.Items)
	if err != nil {
		log.Fatal("ranking businesses", zap.Error(err))
	}

	entries := make([]rankEntry, 0, len(ranked))
	for idx, r := range ranking.Top(ranked, top) {
		entries = append(entries, rankEntry{Rank: idx + 1, ID: r.Business.ID, Name: r.Business.Name, Result: r.Result})
	}

	if err := printJSON(cmd.OutOrStdout(), entries); err != nil {
		log.Fatal("printing result", zap.Error(err))
	}
}

func prepareFilters(config *Config, ranker *ranking.Ranker, business *profile.Business, log *zap.Logger) *filtering.Filtering {
	excludeFile := strings.TrimSpace(config.ExcludeFile)
	if excludeFile == "" {
		excludeFile = strings.TrimSpace(viper.GetString("exclude-file"))
	}

	cfg := config.Filter

	steps := []filtering.Filter{
		filtering.NewExcludeFile(excludeFile, log),
		filtering.NewLocations(cfg.Locations, log),
		filtering.NewAudience(filtering.AudienceConfig{
			MinFollowers:  cfg.MinFollowers,
			MinEngagement: cfg.MinEngagement,
		}, log),
	}

	scoreFilter := filtering.NewMinimumScore(&filtering.MinimumScoreConfig{
		Enabled:        true,
		MinimumScore:   cfg.MinimumScore,
		AppendExcluded: cfg.AppendExcluded,
	}, &filtering.MinimumScoreDeps{
		Logger:      log,
		Ranker:      ranker,
		Business:    business,
		ExcludeFile: excludeFile,
	})
	filters := filtering.New(append(steps, scoreFilter), log)
	if cfg.MinimumScore <= 0 {
		filters.DisableByName(scoreFilter.Name(), "no minimum score configured")
	}

	return filters
}
