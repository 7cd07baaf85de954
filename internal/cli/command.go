package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgallion1/wikidoc/internal/config"
)

// Version is the wikidoc release, set at build time.
var Version = "dev"

// CreateRootCommand creates the root command and its subcommands.
func CreateRootCommand(flags *Flags, app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wikidoc",
		Short: "Read and translate encyclopedia articles",
		Long: `wikidoc fetches Wikipedia articles, splits them into sections and
translates them through a pluggable backend.

Examples:
  wikidoc search "Alan Turing" --lang en
  wikidoc article "Alan Turing" --to de --out turing.docx
  wikidoc translate --to fr notes.txt
  echo "Hello world." | wikidoc translate --to es -`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newSectionsCommand(flags, app),
		newTranslateCommand(flags, app),
		newSearchCommand(flags, app),
		newArticleCommand(flags, app),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.wikidoc.yaml)")
	cmd.PersistentFlags().StringVarP(&flags.Lang, "lang", "l", flags.Lang, "Wikipedia edition to read from")
	cmd.PersistentFlags().StringVar(&flags.Provider, "provider", "", "Translation backend: "+strings.Join(config.Providers, ", "))
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log progress to stderr")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("lang", cmd.PersistentFlags().Lookup("lang"))
	viper.BindPFlag("translate.provider", cmd.PersistentFlags().Lookup("provider"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".wikidoc" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wikidoc")
	}

	// Environment variables
	viper.SetEnvPrefix("WIKIDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
