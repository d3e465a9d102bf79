package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bryanwhiting/weatherman"
	"github.com/bryanwhiting/weatherman/config"
	"github.com/bryanwhiting/weatherman/request"
	"github.com/bryanwhiting/weatherman/store"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

type runFlags struct {
	input  string
	output string
	report string

	index string
	slug  string

	demo            bool
	demoSeriesCount int

	profile    string
	profileDir string

	repo  string
	runID string
	actor string
	sha   string
}

func runCmd(root *rootFlags) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Backtest and forecast the series of a request",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if err := setupLogger(cfg, cmd.ErrOrStderr()); err != nil {
				return err
			}

			switch flags.profile {
			case "":
			case "cpu":
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(flags.profileDir), profile.Quiet).Stop()
			case "mem":
				defer profile.Start(profile.MemProfile, profile.ProfilePath(flags.profileDir), profile.Quiet).Stop()
			default:
				return fmt.Errorf("unknown profile %q, expected cpu or mem", flags.profile)
			}

			overrides := make(map[string]any)
			if flags.demo {
				overrides[request.KeyDemoMode] = true
				overrides[request.KeyDemoSeriesCount] = flags.demoSeriesCount
			}
			req, err := readRequest(flags.input, overrides)
			if err != nil {
				return err
			}

			opt, err := cfg.Options()
			if err != nil {
				return err
			}
			f, err := weatherman.New(opt)
			if err != nil {
				return err
			}
			res, err := f.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			prov := store.NewProvenance(flags.repo, flags.runID, flags.actor, flags.sha)
			meta := store.NewMeta(flags.slug, res, time.Now(), prov)

			if flags.output != "" {
				if err := store.WriteResult(flags.output, res, &meta); err != nil {
					return err
				}
			} else {
				data, err := json.MarshalIndent(store.Document{Result: res, Meta: &meta}, "", "  ")
				if err != nil {
					return fmt.Errorf("unable to encode result, %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}

			if flags.report != "" {
				if err := os.MkdirAll(filepath.Dir(flags.report), 0o755); err != nil {
					return fmt.Errorf("unable to create report directory, %w", err)
				}
				if err := f.PlotResult(flags.report, res); err != nil {
					return fmt.Errorf("unable to plot result, %w", err)
				}
			}

			indexPath := flags.index
			if indexPath == "" {
				indexPath = cfg.Store.IndexPath
			}
			if indexPath != "" {
				idx := &store.Index{Path: indexPath}
				if err := idx.Upsert(store.NewEntry(meta, res)); err != nil {
					return fmt.Errorf("unable to update index, %w", err)
				}
			}

			return res.TablePrint(cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "request file (JSON or YAML)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "result file, stdout when empty")
	cmd.Flags().StringVar(&flags.report, "report", "", "html report file")
	cmd.Flags().StringVar(&flags.index, "index", "", "run index file, overrides store.index_path")
	cmd.Flags().StringVar(&flags.slug, "slug", "", "name of the run in the index")
	cmd.Flags().BoolVar(&flags.demo, "demo", false, "forecast the demo dataset instead of the request series")
	cmd.Flags().IntVar(&flags.demoSeriesCount, "demo-series-count", request.DefaultDemoSeriesCount, "number of demo series")
	cmd.Flags().StringVar(&flags.profile, "profile", "", "write a cpu or mem profile")
	cmd.Flags().StringVar(&flags.profileDir, "profile-dir", ".", "profile output directory")
	cmd.Flags().StringVar(&flags.repo, "repo", "", "repository that triggered the run")
	cmd.Flags().StringVar(&flags.runID, "run-id", "", "CI run id")
	cmd.Flags().StringVar(&flags.actor, "actor", "", "user that triggered the run")
	cmd.Flags().StringVar(&flags.sha, "sha", "", "commit sha")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
