// socialrobot is the command-line entry point for the thinking-aloud
// dialogue agent: it drives a connected robot (run), a local text REPL
// (repl), or inspects the trial cache (trials).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lhj-lhj/SocialRobotics/config"
	"github.com/lhj-lhj/SocialRobotics/logging"
)

var (
	// Persistent flags
	configPath string
	logLevel   string
	logFormat  string

	// settings resolved by the root PersistentPreRunE, shared by subcommands.
	settings config.Settings
	logger   logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "socialrobot",
	Short: "Dialogue agent with visible thinking for a social robot",
	Long: `socialrobot answers spoken questions through a social robot.

For each question a controller model decides whether the robot should
visibly "think" first; thinking cues and the final answer are generated
concurrently, paced with gestures and expressions, and repeated questions
replay from the trial cache without touching the models.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.Load(func(o *config.Options) {
			o.ConfigPath = configPath
		})
		if err != nil {
			return err
		}
		if logLevel != "" {
			settings.LogLevel = logLevel
		}
		if logFormat != "" {
			settings.LogFormat = logFormat
		}
		logger = logging.NewSlogLogger(logging.ParseLevel(settings.LogLevel), settings.LogFormat, false)
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file (default: probe ./config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json")

	rootCmd.AddCommand(runCmd, replCmd, trialsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
