package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/template-cloner/internal/geometry"
	"github.com/ironsheep/template-cloner/internal/imaging"
	"github.com/ironsheep/template-cloner/internal/locate"
)

type locateOutput struct {
	Found     bool          `yaml:"found"`
	Box       *geometry.Box `yaml:"box,omitempty"`
	Score     float64       `yaml:"score,omitempty"`
	Threshold float64       `yaml:"threshold"`
}

func newLocateCmd(a *app) *cobra.Command {
	var (
		sourcePath string
		targetPath string
		boxSpec    string
		threshold  float64
	)

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Find a box of the source image inside the target image",
		Example: `  template-cloner locate --source a.png --box 12,12,80,30 --target b.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			box, err := geometry.ParseBox(boxSpec)
			if err != nil {
				return err
			}

			cache := imaging.NewImageCache()
			source, err := cache.Load(sourcePath)
			if err != nil {
				return err
			}
			target, err := cache.Load(targetPath)
			if err != nil {
				return err
			}

			cfg := a.mgr.Get()
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Matching.Threshold
			}
			loc := locate.New(cfg.Matcher(), threshold)

			out := locateOutput{Threshold: loc.Threshold}
			found, err := loc.Locate(cmd.Context(), source, box, target)
			var nf *locate.SegmentNotFoundError
			switch {
			case errors.As(err, &nf):
				out.Score = nf.Score
			case err != nil:
				return err
			default:
				out.Found = true
				out.Box = &found
			}

			return writeYAML(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "source image")
	cmd.Flags().StringVar(&targetPath, "target", "", "image to search")
	cmd.Flags().StringVar(&boxSpec, "box", "", "segment of the source image as x0,y0,x1,y1")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum correlation score (default: matching.threshold)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("box")

	return cmd
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
