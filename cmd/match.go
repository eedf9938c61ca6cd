package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/ai"
	"github.com/spigell/collabmatch/internal/logger"
)

type matchOutput struct {
	Influencer string          `json:"influencer"`
	Business   string          `json:"business"`
	Result     *ai.MatchResult `json:"result"`
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a single influencer against a single business",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("influencer", "i", "", "influencer id or name. Prompted when unset.")
	matchCmd.Flags().StringP("business", "b", "", "business id or name. Prompted when unset.")
}

func match(cmd *cobra.Command) {
	ctx := context.Background()

	log, config, dir := bootstrap()

	influencer, err := selectInfluencer(dir, cmd.Flag("influencer").Value.String())
	if err != nil {
		log.Fatal("selecting influencer", zap.Error(err), zap.Strings("known influencers", dir.Influencers.Names()))
	}

	business, err := selectBusiness(dir, cmd.Flag("business").Value.String())
	if err != nil {
		log.Fatal("selecting business", zap.Error(err), zap.Strings("known businesses", dir.Businesses.Names()))
	}

	matcher, err := newMatcher(ctx, config, log)
	if err != nil {
		log.Fatal("building matcher", zap.Error(err))
	}

	result, err := matcher.Evaluate(ctx, influencer, business)
	if err != nil {
		log.Fatal("evaluating match", append(logger.PairFields(influencer.ID, business.ID), zap.Error(err))...)
	}

	log.Info("match evaluated",
		append(logger.PairFields(influencer.ID, business.ID),
			zap.Int("match_score", result.MatchScore),
			zap.String("source", result.Source),
		)...,
	)

	if err := printJSON(cmd.OutOrStdout(), matchOutput{
		Influencer: influencer.Name,
		Business:   business.Name,
		Result:     result,
	}); err != nil {
		log.Fatal("printing result", zap.Error(err))
	}
}
