package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"parcelcorr/internal/anal"
	"parcelcorr/internal/atlas"
	"parcelcorr/internal/config"
	"parcelcorr/internal/dataset"
	"parcelcorr/internal/extract"
	"parcelcorr/internal/io"
	"parcelcorr/internal/pipeline"
	"parcelcorr/internal/sim"
)

func main() {
	root := &cobra.Command{
		Use:   "parcelcorr",
		Short: "Parcel-level correlation statistics over contrast maps",
	}
	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		configPath     string
		inputDir       string
		outputDir      string
		subjects       []string
		atlasVolume    string
		atlasLabels    string
		exclusionsFile string
		workers        int
		saveMatrices   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full similarity-and-classification analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			// Flags override the config file.
			if inputDir != "" {
				cfg.InputDir = inputDir
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if len(subjects) > 0 {
				cfg.Subjects = subjects
			}
			if atlasVolume != "" {
				cfg.AtlasVolume = atlasVolume
			}
			if atlasLabels != "" {
				cfg.AtlasLabels = atlasLabels
			}
			if exclusionsFile != "" {
				cfg.ExclusionsFile = exclusionsFile
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if saveMatrices {
				cfg.SaveMatrices = true
			}

			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path")
	cmd.Flags().StringVar(&inputDir, "input-dir", "", "directory containing subject contrast maps")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for output reports")
	cmd.Flags().StringSliceVar(&subjects, "subjects", nil, "subject IDs to analyze")
	cmd.Flags().StringVar(&atlasVolume, "atlas-volume", "", "parcellation atlas NIfTI volume")
	cmd.Flags().StringVar(&atlasLabels, "atlas-labels", "", "parcellation label table (TSV)")
	cmd.Flags().StringVar(&exclusionsFile, "exclusions-file", "", "exclusions JSON file")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker pool size (0 = auto)")
	cmd.Flags().BoolVar(&saveMatrices, "save-matrices", false, "save pooled correlation matrices as npy")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log.Printf("loading atlas %s", cfg.AtlasVolume)
	at, err := atlas.Load(cfg.AtlasVolume, cfg.AtlasLabels)
	if err != nil {
		return err
	}
	log.Printf("loaded %d parcels", len(at.Labels()))

	excl, err := dataset.LoadExclusions(cfg.ExclusionsFile)
	if err != nil {
		return err
	}

	byContrast, err := dataset.Discover(cfg.InputDir, cfg.Subjects, excl)
	if err != nil {
		return err
	}
	log.Printf("found %d contrasts", len(byContrast))

	grouped := extract.Extract(byContrast, at)

	results := pipeline.Run(ctx, grouped, cfg.Constructs, cfg.Workers)
	log.Printf("computed %d contrast-parcel units", len(results))

	if cfg.SaveMatrices {
		dir := filepath.Join(cfg.OutputDir, "matrices")
		for contrast, byParcel := range grouped {
			for parcel, obs := range byParcel {
				m, err := sim.PooledMatrix(obs)
				if err != nil {
					continue
				}
				if err := io.SaveMatrix(dir, contrast, parcel, m); err != nil {
					return err
				}
			}
		}
	}

	out := cfg.OutputDir
	if err := io.WriteClassifications(filepath.Join(out, "parcel_classifications.csv"), results); err != nil {
		return err
	}
	if err := io.WriteAcrossConstruct(filepath.Join(out, "across_construct.csv"), results); err != nil {
		return err
	}
	if err := io.WriteSummary(filepath.Join(out, "classification_summary.csv"), anal.ClassificationSummary(results)); err != nil {
		return err
	}
	if err := io.WriteConsistency(filepath.Join(out, "consistency.csv"), anal.CrossContrastConsistency(results)); err != nil {
		return err
	}
	if err := io.WriteRanking(filepath.Join(out, "rank_fingerprint.csv"), "fingerprint_strength", anal.RankByFingerprint(results)); err != nil {
		return err
	}
	if err := io.WriteRanking(filepath.Join(out, "rank_variability.csv"), "variability_score", anal.RankByVariability(results)); err != nil {
		return err
	}
	if err := io.WriteRanking(filepath.Join(out, "rank_canonicality.csv"), "canonicality_score", anal.RankByCanonicality(results)); err != nil {
		return err
	}

	log.Printf("wrote reports to %s", out)
	return nil
}
