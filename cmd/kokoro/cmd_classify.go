package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"kokorolog/internal/emotion"
)

var classifySelected string

// classifyCmd runs one text through the pipeline without persisting
var classifyCmd = &cobra.Command{
	Use:   "classify [text]",
	Short: "Classify one text and print the distribution",
	Long: `Runs the configured classification pipeline on a single text and
prints the winning emotion and the full six-label distribution.
Nothing is persisted.

Example:
  kokoro classify "今日は部活が楽しかった"
  kokoro classify --selected しんどい "別になんでもない"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

var labelColors = map[emotion.Label]*color.Color{
	emotion.Fun:     color.New(color.FgGreen, color.Bold),
	emotion.Sad:     color.New(color.FgBlue, color.Bold),
	emotion.Angry:   color.New(color.FgRed, color.Bold),
	emotion.Anxious: color.New(color.FgMagenta, color.Bold),
	emotion.Tired:   color.New(color.FgYellow, color.Bold),
	emotion.Neutral: color.New(color.FgWhite),
}

func runClassify(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	llmClient, err := buildLLM(cmd.Context())
	if err != nil {
		return err
	}
	res, err := buildResolver(llmClient).Resolve(cmd.Context(), text, classifySelected)
	if err != nil {
		return err
	}

	c := labelColors[res.Emotion]
	fmt.Printf("emotion: %s  score: %.3f", c.Sprint(res.Emotion), res.Score)
	if res.Manual {
		fmt.Print("  (manual)")
	}
	fmt.Println()

	for _, l := range emotion.Labels() {
		v := res.Labels.Get(l)
		bar := strings.Repeat("█", int(v*20+0.5))
		fmt.Printf("  %-4s %.3f %s\n", l, v, labelColors[l].Sprint(bar))
	}

	if emotion.HasCrisisPhrase(text) {
		color.New(color.FgRed, color.Bold).Println("crisis phrase detected")
	}
	return nil
}

func init() {
	classifyCmd.Flags().StringVar(&classifySelected, "selected", "", "Manually selected emotion (overrides the text)")
}
