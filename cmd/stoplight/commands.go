package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/stoplight-backend/internal/app"
	"github.com/yungbote/stoplight-backend/internal/config"
	"github.com/yungbote/stoplight-backend/internal/embedding"
	"github.com/yungbote/stoplight-backend/internal/survey"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "stoplight",
		Short:         "Survey embedding backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (JSON or YAML)")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg.Version = version
		return cfg, nil
	}

	cmd.AddCommand(serveCmd(load), embedCmd(load), datasetsCmd(load))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stoplight %s\n", version)
		},
	})
	return cmd
}

type configLoader func() (*config.Config, error)

func serveCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
}

func embedCmd(load configLoader) *cobra.Command {
	var (
		file       string
		metric     string
		nNeighbors int
		minDist    float64
		features   []string
		exclude    string
		surveyNum  string
		onlyPoints bool
	)
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Compute one embedding and print the JSON payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			params := embedding.DefaultParams(cfg.Reducer.Seed)
			params.NNeighbors = nNeighbors
			params.MinDist = minDist
			params.Metric = metric
			req := survey.Request{
				File:             file,
				Params:           params,
				SelectedFeatures: features,
				ExcludeFeature:   strings.TrimSpace(exclude),
				SurveyNumber:     surveyNum,
			}

			var out any
			if onlyPoints {
				out, err = a.Service.Recompute(cmd.Context(), req)
			} else {
				out, err = a.Service.Compute(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Workbook id in the source store")
	cmd.Flags().StringVar(&metric, "metric", embedding.DefaultMetric, "Distance metric")
	cmd.Flags().IntVar(&nNeighbors, "n-neighbors", embedding.DefaultNNeighbors, "Neighborhood size")
	cmd.Flags().Float64Var(&minDist, "min-dist", embedding.DefaultMinDist, "Minimum distance between embedded points")
	cmd.Flags().StringSliceVar(&features, "features", nil, "Features to reduce (default all)")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Single feature to leave out")
	cmd.Flags().StringVar(&surveyNum, "survey", "", "Only rows from this survey number")
	cmd.Flags().BoolVar(&onlyPoints, "points-only", false, "Print only the embedding coordinates")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func datasetsCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List workbooks in the source store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			infos, err := a.Service.Datasets(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%d\t%s\n", info.Key, info.Size, info.LastModified.UTC().Format("2006-01-02T15:04:05Z"))
			}
			return nil
		},
	}
}
