package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/linkarium/internal/graph"
	"github.com/ppiankov/linkarium/internal/model"
)

var (
	cfgFile   string
	verbose   bool
	storePath string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "linkarium",
	Short: "Linkarium - a personal link knowledge graph",
	Long: `Linkarium ingests web links, enriches each with a title, extracted
text and a suggested category and keyword set, and stores the result
as a small knowledge graph of links, categories and keywords.

Classification is heuristic by design: the model response is parsed
deterministically against a fixed category catalog, and every network
or model failure degrades into a documented fallback value instead of
aborting ingestion.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("linkarium v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.linkarium/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&storePath, "db", "", "graph database path (default from config)")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("db"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.linkarium")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match LINKARIUM_*
	viper.SetEnvPrefix("LINKARIUM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers viper settings (file, env, bound flags) over the
// built-in defaults.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring malformed configuration: %v\n", err)
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg
}

// openStore opens the shared graph store for a command. Every command
// owns exactly one handle, opened at start and closed on exit.
func openStore(cfg *model.Config) (*graph.Store, error) {
	store, err := graph.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open graph store %s: %w", cfg.Store.Path, err)
	}
	return store, nil
}

// applyLLMEnv fills provider credentials from the conventional
// environment variables.
func applyLLMEnv(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}
