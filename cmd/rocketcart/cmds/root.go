package cmds

import (
	"os"

	"rocketcart/internal/types"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	EnvFileKey   = "ENV_FILE"
	ConfigEnvKey = "CART_CONFIG"
	LogLevelKey  = "LOG_LEVEL"
	LogFormatKey = "LOG_FORMAT"
)

type rootOptions struct {
	configPath string
	cfg        types.Config
}

// NewRootCmd builds the rocketcart command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "rocketcart",
		Short:         "Shopping cart backed by a persistent slot and a remote stock check",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loadEnv()
			setupLogging()
			cfg, err := LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv(ConfigEnvKey),
		"path to the YAML config file (env "+ConfigEnvKey+")")

	root.AddCommand(
		newServeCmd(opts),
		newAddCmd(opts),
		newRemoveCmd(opts),
		newUpdateCmd(opts),
		newShowCmd(opts),
		newCatalogCmd(),
	)
	return root
}

// LoadConfig reads the YAML config at path, or returns the defaults when path is empty.
func LoadConfig(path string) (types.Config, error) {
	if path == "" {
		return types.DefaultConfig(), nil
	}
	return types.LoadConfig(path)
}

func loadEnv() {
	envFile := os.Getenv(EnvFileKey)
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Debug("The .env file not found.")
	}
}

func setupLogging() {
	if os.Getenv(LogFormatKey) == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(os.Getenv(LogLevelKey))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
