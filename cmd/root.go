package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "collabmatch"
)

type Config struct {
	Fixtures    string           `mapstructure:"fixtures"`
	ExcludeFile string           `mapstructure:"exclude-file"`
	Scoring     *ScoringConfig   `mapstructure:"scoring"`
	Filter      *FilterConfig    `mapstructure:"filter"`
	AI          *AIConfig        `mapstructure:"ai"`
	Messaging   *MessagingConfig `mapstructure:"messaging"`
}

type ScoringConfig struct {
	Delay          time.Duration `mapstructure:"delay"`
	Workers        int           `mapstructure:"workers"`
	OpenEndedSizes bool          `mapstructure:"open-ended-sizes"`
}

type FilterConfig struct {
	Locations      []string `mapstructure:"locations"`
	MinFollowers   int      `mapstructure:"min-followers"`
	MinEngagement  float64  `mapstructure:"min-engagement"`
	MinimumScore   int      `mapstructure:"minimum-score"`
	AppendExcluded bool     `mapstructure:"append-excluded"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type MessagingConfig struct {
	ReplyDelay       time.Duration `mapstructure:"reply-delay"`
	TypingDelay      time.Duration `mapstructure:"typing-delay"`
	PresenceInterval time.Duration `mapstructure:"presence-interval"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "collabmatch scores how well influencers and businesses fit together for a collaboration",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetEnvPrefix(app)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is collabmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("fixtures", "", "a YAML file with influencers and businesses (default is the built-in directory)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("fixtures", rootCmd.PersistentFlags().Lookup("fixtures"))
}

func setDefaults() {
	viper.SetDefault("scoring.delay", time.Duration(0))
	viper.SetDefault("scoring.workers", 4)
	viper.SetDefault("scoring.open-ended-sizes", false)

	viper.SetDefault("filter.minimum-score", 0)

	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)

	viper.SetDefault("messaging.reply-delay", time.Second)
	viper.SetDefault("messaging.typing-delay", 2*time.Second)
	viper.SetDefault("messaging.presence-interval", 10*time.Second)
}

func initConfig() {
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was given explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
