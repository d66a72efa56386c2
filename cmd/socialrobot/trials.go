package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lhj-lhj/SocialRobotics/memory"
)

var trialsCmd = &cobra.Command{
	Use:   "trials",
	Short: "Inspect or clear the trial cache",
}

var trialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored trials in insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := memory.NewTrialMemory(func(o *memory.Options) {
			o.Path = settings.TrialsPath
			o.Logger = logger
		})

		records := store.List()
		if len(records) == 0 {
			fmt.Println("trial cache is empty:", settings.TrialsPath)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tCONFIDENCE\tCUES\tQUESTION\tANSWER")
		for i, r := range records {
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
				i+1, r.Confidence, len(r.ThinkingCues), truncate(r.Question, 48), truncate(r.Answer, 64))
		}
		return w.Flush()
	},
}

var trialsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored trial",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := memory.NewTrialMemory(func(o *memory.Options) {
			o.Path = settings.TrialsPath
			o.Logger = logger
		})
		n := store.Len()
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Printf("cleared %d trial(s) from %s\n", n, settings.TrialsPath)
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func init() {
	trialsCmd.AddCommand(trialsListCmd, trialsClearCmd)
}
