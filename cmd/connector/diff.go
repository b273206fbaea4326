package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/json-to-terraform/connector/internal/linkdiff"
)

func registerDiffCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "diff <desired> <existing>",
		Short: "Compute the links to add and remove between two link maps",
		Long: `Read two owner-to-resources maps (YAML or JSON) and print the links that must be
added and removed to turn the existing map into the desired one.`,
		Example: `  connector diff desired.yaml drawn.yaml`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desired, err := loadLinks(args[0])
			if err != nil {
				return err
			}
			existing, err := loadLinks(args[1])
			if err != nil {
				return err
			}
			plan := linkdiff.Diff(desired, existing)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				ToAdd    linkdiff.Links `json:"to_add"`
				ToRemove linkdiff.Links `json:"to_remove"`
				Empty    bool           `json:"empty"`
			}{plan.ToAdd, plan.ToRemove, plan.Empty()})
		},
	}
	parent.AddCommand(cmd)
}

func loadLinks(path string) (linkdiff.Links, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	links := linkdiff.Links{}
	if err := yaml.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return links, nil
}
