package main

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"
	"timeline.znkr.io/demo/highlight"
	"timeline.znkr.io/demo/model"
	"timeline.znkr.io/demo/source"
)

var initCmd = &cobra.Command{
	Use:   "init FILE",
	Short: "Writes the initial timeline to FILE",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeTimeline(args[0], model.Initial())
	},
}

var randomSeed uint64

var randomCmd = &cobra.Command{
	Use:   "random FILE",
	Short: "Replaces FILE with a random timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		if cmd.Flags().Changed("seed") {
			r = rand.New(rand.NewPCG(randomSeed, randomSeed))
		}
		return writeTimeline(args[0], model.Random(r))
	},
}

var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Prints the edit script that turns timeline OLD into timeline NEW",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		old, err := readTimeline(args[0])
		if err != nil {
			return err
		}
		updated, err := readTimeline(args[1])
		if err != nil {
			return err
		}
		src := source.New(old, source.WithLogger(log.New(io.Discard, "", 0)))
		fmt.Fprint(cmd.OutOrStdout(), highlight.Format(src.Update(updated)))
		return nil
	},
}

func init() {
	randomCmd.Flags().Uint64Var(&randomSeed, "seed", 0, "seed for the random generator")
}

func readTimeline(filename string) (model.Timeline, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return model.Timeline{}, fmt.Errorf("reading timeline: %v", err)
	}
	t, err := model.Parse(b)
	if err != nil {
		return model.Timeline{}, fmt.Errorf("parsing %s: %v", filename, err)
	}
	return t, nil
}

func writeTimeline(filename string, t model.Timeline) error {
	b, err := model.Format(t)
	if err != nil {
		return err
	}
	if filename == "-" {
		_, err := os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		return fmt.Errorf("writing timeline: %v", err)
	}
	return nil
}
