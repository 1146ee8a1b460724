// Package cli is the medassist terminal client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"medassist/api/internal/assist"
	"medassist/api/internal/util"
)

// Assistant is the pipeline surface the commands call.
type Assistant interface {
	AnalyzeReport(ctx context.Context, in assist.Envelope, p *assist.Profile) (assist.ReportAnalysis, error)
	PredictSymptoms(ctx context.Context, in assist.Envelope, p *assist.Profile) (assist.SymptomPrediction, error)
	Chat(ctx context.Context, in assist.ChatRequest) (assist.ChatReply, error)
	FindHospitals(ctx context.Context, in assist.Envelope) (assist.HospitalLookup, error)
	Tips(ctx context.Context, p *assist.Profile) (assist.Tips, error)
}

// Factory builds the assistant once flags are parsed.
type Factory func() (Assistant, error)

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	good    = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	bad     = color.New(color.FgRed).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

type profileFlags struct {
	age        int
	weight     float64
	conditions []string
}

func (f *profileFlags) profile() *assist.Profile {
	if f.age == 0 && f.weight == 0 && len(f.conditions) == 0 {
		return nil
	}
	return &assist.Profile{Age: f.age, Weight: f.weight, Conditions: f.conditions}
}

// NewRootCmd wires the subcommands. timeout bounds each AI call.
func NewRootCmd(newAI Factory, timeout time.Duration) *cobra.Command {
	var pf profileFlags
	root := &cobra.Command{
		Use:           "medassist",
		Short:         "Health assistant in the terminal",
		Long:          "medassist analyzes lab reports, suggests likely conditions for symptoms, answers health questions and finds nearby hospitals.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.IntVar(&pf.age, "age", 0, "Age in years, used to personalize answers")
	flags.Float64Var(&pf.weight, "weight", 0, "Weight in kg")
	flags.StringSliceVar(&pf.conditions, "condition", nil, "Known condition (repeatable)")
	flags.DurationVar(&timeout, "timeout", timeout, "Deadline for one AI call")

	run := func(fn func(ctx context.Context, cmd *cobra.Command, ai Assistant) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			ai, err := newAI()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return fn(ctx, cmd, ai)
		}
	}

	root.AddCommand(
		reportCmd(&pf, run),
		symptomsCmd(&pf, run),
		chatCmd(&pf, run),
		hospitalsCmd(run),
		tipsCmd(&pf, run),
	)
	return root
}

type runner func(fn func(ctx context.Context, cmd *cobra.Command, ai Assistant) error) func(*cobra.Command, []string) error

func reportCmd(pf *profileFlags, run runner) *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "report [file]",
		Short: "Summarize a lab report (PDF, image or text file)",
		Args:  cobra.MaximumNArgs(1),
	}
	cmd.Flags().StringVar(&text, "text", "", "Report text instead of a file")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		in := assist.Envelope{Text: text}
		if len(args) == 1 {
			b, err := readBlob(args[0])
			if err != nil {
				return err
			}
			if strings.HasPrefix(b.MIMEType, "text/") {
				in.Text = string(b.Data)
			} else {
				in.Blob = b
			}
		}
		return run(func(ctx context.Context, cmd *cobra.Command, ai Assistant) error {
			out, err := ai.AnalyzeReport(ctx, in, pf.profile())
			if err != nil {
				return err
			}
			printReport(cmd, out)
			return nil
		})(c, args)
	}
	return cmd
}

func symptomsCmd(pf *profileFlags, run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "symptoms <description>",
		Short: "List likely conditions for a symptom description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			in := assist.Envelope{Text: strings.Join(args, " ")}
			return run(func(ctx context.Context, cmd *cobra.Command, ai Assistant) error {
				out, err := ai.PredictSymptoms(ctx, in, pf.profile())
				if err != nil {
					return err
				}
				printSymptoms(cmd, out)
				return nil
			})(c, args)
		},
	}
}

func chatCmd(pf *profileFlags, run runner) *cobra.Command {
	var audioOut string
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the assistant a question",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().StringVar(&audioOut, "audio-out", "", "Also synthesize the reply and write it to this file")
	cmd.RunE = func(c *cobra.Command, args []string) error {
		req := assist.ChatRequest{Message: strings.Join(args, " "), Profile: pf.profile(), Voice: audioOut != ""}
		return run(func(ctx context.Context, cmd *cobra.Command, ai Assistant) error {
			out, err := ai.Chat(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			if audioOut == "" {
				return nil
			}
			if out.Audio.Empty() {
				fmt.Fprintln(cmd.ErrOrStderr(), warn("no audio was produced"))
				return nil
			}
			if err := os.WriteFile(audioOut, out.Audio.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), faint("audio written to "+audioOut))
			return nil
		})(c, args)
	}
	return cmd
}

func hospitalsCmd(run runner) *cobra.Command {
	var (
		lat, lng float64
		query    string
	)
	cmd := &cobra.Command{
		Use:   "hospitals",
		Short: "Find hospitals near coordinates or a place",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")
	cmd.Flags().StringVar(&query, "query", "", "Place or address to search near")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	cmd.MarkFlagsOneRequired("lat", "query")

	cmd.RunE = func(c *cobra.Command, args []string) error {
		in := assist.Envelope{Query: query}
		if c.Flags().Changed("lat") {
			in.Geo = &assist.Geo{Lat: lat, Lng: lng}
		}
		return run(func(ctx context.Context, cmd *cobra.Command, ai Assistant) error {
			out, err := ai.FindHospitals(ctx, in)
			if err != nil {
				return err
			}
			printHospitals(cmd, out)
			return nil
		})(c, args)
	}
	return cmd
}

func tipsCmd(pf *profileFlags, run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "tips",
		Short: "Get a few health tips",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, cmd *cobra.Command, ai Assistant) error {
			out, err := ai.Tips(ctx, pf.profile())
			if err != nil {
				return err
			}
			for _, t := range out.Tips {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", good("•"), t)
			}
			return nil
		}),
	}
}

func readBlob(path string) (*assist.Blob, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return &assist.Blob{Data: data, MIMEType: util.BaseMIME(util.PickMIME("", "", data))}, nil
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, assist.ErrInput):
		return 2
	case errors.Is(err, assist.ErrTransport):
		return 3
	default:
		return 1
	}
}

// PrintError writes a one-line error to stderr.
func PrintError(cmd *cobra.Command, err error) {
	fmt.Fprintln(cmd.ErrOrStderr(), bad("error:"), assist.Message(err))
}
