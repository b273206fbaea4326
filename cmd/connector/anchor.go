package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/json-to-terraform/connector/internal/geometry"
)

type anchorOutput struct {
	Index     int             `json:"index"`
	Anchor    geometry.Anchor `json:"anchor"`
	Point     geometry.Point  `json:"point"`
	Reference geometry.Point  `json:"reference"`
}

func registerAnchorCmd(parent *cobra.Command, a *app) {
	var segments int
	cmd := &cobra.Command{
		Use:   "anchor <source x,y,w,h> <target x,y,w,h>",
		Short: "Pick the strip anchor of a resource box facing a target box",
		Example: `  # Network at (0,300) 600x20, owner anchor at (250,100) 10x10
  connector anchor 0,300,600,20 250,100,10,10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := parseBox(args[0])
			if err != nil {
				return err
			}
			target, err := parseBox(args[1])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("segments") {
				segments = a.cfg.Canvas.AnchorSegments
			}

			anchors := geometry.StripAnchors(segments)
			i := geometry.SelectAnchor(src, target, anchors)
			out := anchorOutput{
				Index:     i,
				Anchor:    anchors[i],
				Point:     src.At(anchors[i]),
				Reference: geometry.Reference(src, target),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().IntVar(&segments, "segments", 30, "segments of the anchor strip")
	parent.AddCommand(cmd)
}

func parseBox(s string) (geometry.Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Box{}, fmt.Errorf("box %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Box{}, fmt.Errorf("box %q: %w", s, err)
		}
		v[i] = f
	}
	return geometry.Box{X: v[0], Y: v[1], W: v[2], H: v[3]}, nil
}
