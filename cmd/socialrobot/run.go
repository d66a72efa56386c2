package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	socialrobotics "github.com/lhj-lhj/SocialRobotics"
)

var (
	robotHost          string
	robotPort          int
	robotAuthKey       string
	noMemory           bool
	skipReplayThinking bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a robot and hold a dialogue until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if robotHost != "" {
			settings.Robot.Host = robotHost
		}
		if robotPort != 0 {
			settings.Robot.Port = robotPort
		}
		if robotAuthKey != "" {
			settings.Robot.AuthKey = robotAuthKey
		}
		if err := settings.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := socialrobotics.Connect(ctx, settings, logger)
		if err != nil {
			return err
		}

		robot, err := socialrobotics.New(func(o *socialrobotics.Options) {
			o.Settings = settings
			o.Sink = client
			o.Logger = logger
			o.WithoutTrialMemory = noMemory
			o.SkipReplayThinking = skipReplayThinking
		})
		if err != nil {
			client.Close()
			return err
		}

		if err := robot.Engage(ctx, client); err != nil {
			client.Close()
			return fmt.Errorf("engage robot: %w", err)
		}

		logger.Info("Dialogue running, press Ctrl-C to stop",
			"host", settings.Robot.Host, "port", settings.Robot.Port)

		select {
		case <-ctx.Done():
		case <-client.Done():
			logger.Warn("Robot connection closed", "error", client.Err())
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return robot.Shutdown(shutdownCtx)
	},
}

func init() {
	runCmd.Flags().StringVar(&robotHost, "host", "", "robot gateway host (overrides config)")
	runCmd.Flags().IntVar(&robotPort, "port", 0, "robot gateway port (overrides config)")
	runCmd.Flags().StringVar(&robotAuthKey, "auth-key", "", "robot gateway auth key (overrides config)")
	runCmd.Flags().BoolVar(&noMemory, "no-memory", false, "disable the trial cache (every question hits the models)")
	runCmd.Flags().BoolVar(&skipReplayThinking, "skip-replay-thinking", false, "replay stored answers without re-voicing thinking cues")
}
