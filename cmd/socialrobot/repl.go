package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	socialrobotics "github.com/lhj-lhj/SocialRobotics"
	"github.com/lhj-lhj/SocialRobotics/core"
)

var replOffline bool

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Answer questions typed on stdin, actuating to the console",
	Long: `repl runs the dialogue loop without a robot: questions come from
stdin and speech, gestures and expressions are printed to the console.
With --offline a mock generation service replaces the configured provider,
so the loop works without credentials (only replayed trials and canned
answers).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if replOffline {
			settings.Provider = "mock"
		}
		if err := settings.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		robot, err := socialrobotics.New(func(o *socialrobotics.Options) {
			o.Settings = settings
			o.Sink = core.ConsoleSink{}
			o.Logger = logger
		})
		if err != nil {
			return err
		}

		fmt.Println("Type a question and press Enter; empty line or Ctrl-D to quit.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("you> ")
			if !scanner.Scan() {
				break
			}
			question := strings.TrimSpace(scanner.Text())
			if question == "" {
				break
			}

			result, err := robot.Ask(ctx, question)
			switch {
			case errors.Is(err, context.Canceled):
				return nil
			case err != nil:
				fmt.Fprintln(os.Stderr, "run failed:", err)
				continue
			}
			if result.Replayed {
				fmt.Printf("      (replayed from trial memory, confidence %s)\n", result.Confidence)
			} else {
				fmt.Printf("      (path %s, confidence %s)\n", result.Path, result.Confidence)
			}
		}
		return scanner.Err()
	},
}

func init() {
	replCmd.Flags().BoolVar(&replOffline, "offline", false, "use a mock generation service instead of the configured provider")
}
