package main

import (
	"fmt"
	"image"
	"io"
	"os"

	disimaging "github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/ironsheep/template-cloner/internal/cloner"
	"github.com/ironsheep/template-cloner/internal/imaging"
	"github.com/ironsheep/template-cloner/internal/labels"
)

func newCloneCmd(a *app) *cobra.Command {
	var (
		sourcePath  string
		labelsPath  string
		targetPath  string
		outPath     string
		format      string
		workers     int
		onAmbiguity string
		overlayPath string
	)

	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Project the labels of a source image onto a target image",
		Example: `  # Clone labels and print the report as YAML
  template-cloner clone --source invoice-001.png --labels invoice-001.yaml --target invoice-002.png

  # Write a JSON report, skipping ambiguous relations
  template-cloner clone --source a.png --labels a.yaml --target b.png \
    --out b.json --format json --on-ambiguity skip

  # Also save the target with the cloned boxes drawn on it
  template-cloner clone --source a.png --labels a.yaml --target b.png --overlay b-labels.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := labels.ParseFormat(format)
			if err != nil {
				return err
			}

			doc, err := labels.LoadFile(labelsPath)
			if err != nil {
				return err
			}

			cache := imaging.NewImageCache()
			source, err := cache.Load(sourcePath)
			if err != nil {
				return fmt.Errorf("source: %w", err)
			}
			target, err := cache.Load(targetPath)
			if err != nil {
				return fmt.Errorf("target: %w", err)
			}

			cfg := a.mgr.Get()
			opts := cfg.ClonerOptions()
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if cmd.Flags().Changed("on-ambiguity") {
				opts.OnAmbiguity = cloner.Policy(onAmbiguity)
			}

			c, err := cloner.New(cfg.Locator(), opts, a.logger)
			if err != nil {
				return err
			}
			res, err := c.Clone(cmd.Context(), source, target, doc.Labels)
			if err != nil {
				return err
			}

			report := labels.NewReport(res, sourcePath, targetPath)
			if overlayPath != "" {
				if err := saveOverlay(target, res.Labels, overlayPath); err != nil {
					return err
				}
				a.logger.Info("overlay written", "path", overlayPath)
			}
			return writeOutput(cmd.OutOrStdout(), outPath, func(w io.Writer) error {
				return report.Write(w, outFormat)
			})
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "labeled source image")
	cmd.Flags().StringVar(&labelsPath, "labels", "", "label document of the source image (YAML or JSON)")
	cmd.Flags().StringVar(&targetPath, "target", "", "image to receive the labels")
	cmd.Flags().StringVar(&outPath, "out", "", "report file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "yaml", "report format: yaml or json")
	cmd.Flags().IntVar(&workers, "workers", 1, "relations cloned concurrently")
	cmd.Flags().StringVar(&onAmbiguity, "on-ambiguity", "abort", "abort or skip relations with ambiguous anchors or groups")
	cmd.Flags().StringVar(&overlayPath, "overlay", "", "save the target image with the cloned boxes drawn on it")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("labels")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

// saveOverlay draws l on img and saves it; the format follows the extension.
func saveOverlay(img image.Image, l cloner.Labels, path string) error {
	out, _, err := imaging.DrawBoxes(img, labels.Layers(l), true)
	if err != nil {
		return err
	}
	if err := disimaging.Save(out, path); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	return nil
}

// writeOutput runs write against path, or against stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
