package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/ai"
	"github.com/spigell/collabmatch/internal/ai/gemini"
	"github.com/spigell/collabmatch/internal/ai/rules"
	"github.com/spigell/collabmatch/internal/logger"
	"github.com/spigell/collabmatch/internal/profile"
	"github.com/spigell/collabmatch/internal/secrets"
)

// bootstrap builds the logger, reads the config and loads the profile
// directory. Any failure is fatal.
func bootstrap() (*zap.Logger, *Config, *profile.Directory) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Scoring == nil {
		config.Scoring = &ScoringConfig{}
	}
	if config.Filter == nil {
		config.Filter = &FilterConfig{}
	}
	if config.Messaging == nil {
		config.Messaging = &MessagingConfig{}
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	dir, err := profile.Load(config.Fixtures)
	if err != nil {
		logger.Fatal("loading profiles", zap.Error(err), zap.String("fixtures", config.Fixtures))
	}

	logger.Debug("profiles loaded",
		zap.Int("influencers", dir.Influencers.Len()),
		zap.Int("businesses", dir.Businesses.Len()),
	)

	return logger, config, dir
}

// newMatcher returns the rule-based matcher, or the Gemini matcher falling
// back to it when AI is enabled.
func newMatcher(ctx context.Context, config *Config, log *zap.Logger) (ai.Matcher, error) {
	opts := rules.Options{OpenEndedSizes: config.Scoring.OpenEndedSizes}
	fallback := rules.NewMatcher(opts, config.Scoring.Delay, logger.WithProvider(log, ai.SourceRules, ""))

	cfg := config.AI
	if cfg == nil || !cfg.Enabled {
		return fallback, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != ai.SourceGemini {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithProvider(log, ai.SourceGemini, cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	matcherLogger := logger.WithProvider(log, ai.SourceGemini, generator.Model())

	return gemini.NewMatcher(generator, fallback, cfg.Gemini.MaxLogLength, matcherLogger), nil
}

func selectInfluencer(dir *profile.Directory, key string) (*profile.Influencer, error) {
	if strings.TrimSpace(key) == "" {
		prompt := promptui.Select{
			Label: "Choose an influencer and press ENTER",
			Items: dir.Influencers.Names(),
		}

		idx, _, err := prompt.Run()
		if err != nil {
			return nil, err
		}
		return dir.Influencers.Items[idx], nil
	}

	influencer := dir.Influencers.Find(key)
	if influencer == nil {
		return nil, fmt.Errorf("there is no such influencer %q", key)
	}
	return influencer, nil
}

func selectBusiness(dir *profile.Directory, key string) (*profile.Business, error) {
	if strings.TrimSpace(key) == "" {
		prompt := promptui.Select{
			Label: "Choose a business and press ENTER",
			Items: dir.Businesses.Names(),
		}

		idx, _, err := prompt.Run()
		if err != nil {
			return nil, err
		}
		return dir.Businesses.Items[idx], nil
	}

	business := dir.Businesses.Find(key)
	if business == nil {
		return nil, fmt.Errorf("there is no such business %q", key)
	}
	return business, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
