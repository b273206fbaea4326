package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/json-to-terraform/connector/internal/replay"
	"github.com/json-to-terraform/connector/internal/result"
)

var errReplayFailed = errors.New("replay failed")

type replayFlags struct {
	output   string
	jsonOut  bool
	capacity string
	readOnly bool
	noHCL    bool
}

func registerReplayCmd(parent *cobra.Command, a *app) {
	f := &replayFlags{}
	cmd := &cobra.Command{
		Use:   "replay <script|->",
		Short: "Replay a canvas script and export the final canvas",
		Long: `Mount the canvas of a YAML or JSON script, reconcile its links, replay the scripted
gestures and check that the drawn connections match the desired links.
On success the final canvas is written as Terraform files to the output directory.`,
		Example: `  # Replay and write Terraform files
  connector replay canvas.yaml -o out

  # Print the run result as JSON
  connector replay canvas.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, a, f, args[0])
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "output", "output directory for Terraform files")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print the run result as JSON")
	cmd.Flags().StringVar(&f.capacity, "capacity", "", "anchors per owner (available, linked)")
	cmd.Flags().BoolVar(&f.readOnly, "read-only", false, "mount the canvas read-only")
	cmd.Flags().BoolVar(&f.noHCL, "no-hcl", false, "do not render Terraform files")

	parent.AddCommand(cmd)
}

func runReplay(cmd *cobra.Command, a *app, f *replayFlags, input string) error {
	script, err := loadScript(cmd.InOrStdin(), input)
	if err != nil {
		return err
	}

	opts := replay.FromConfig(a.cfg)
	opts.Logger = a.log
	if f.capacity != "" {
		opts.Capacity = replay.Capacity(f.capacity)
	}
	if cmd.Flags().Changed("read-only") {
		opts.ReadOnly = f.readOnly
	}
	if f.noHCL {
		opts.EmitHCL = false
	}

	res, err := replay.New(opts, nil).Run(script)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	out := cmd.OutOrStdout()
	if f.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printIssues(cmd.ErrOrStderr(), res)
	}
	if !res.Success {
		return errReplayFailed
	}
	if len(res.TerraformFiles) == 0 {
		return nil
	}
	return writeFiles(out, f.output, res.TerraformFiles, !f.jsonOut)
}

func loadScript(stdin io.Reader, input string) (*replay.Script, error) {
	if input != "-" {
		return replay.LoadFile(input)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return replay.Parse(data)
}

func printIssues(w io.Writer, res *result.RunResult) {
	for _, e := range res.Errors {
		fmt.Fprintf(w, "ERROR [%s] %s\n", e.NodeID, e.Message)
		if e.Suggestion != "" {
			fmt.Fprintf(w, "  suggestion: %s\n", e.Suggestion)
		}
	}
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "WARN [%s] %s\n", wn.NodeID, wn.Message)
	}
}

func writeFiles(w io.Writer, dir string, files map[string][]byte, verbose bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if verbose {
			fmt.Fprintln(w, "wrote", path)
		}
	}
	return nil
}
