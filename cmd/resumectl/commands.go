package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"resume-builder/internal/config"
	"resume-builder/internal/export"
	"resume-builder/internal/layout"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	infra "resume-builder/pkg/infrastructure"

	"github.com/spf13/cobra"
)

// env holds the collaborators the commands build on demand.
type env struct {
	logger      *slog.Logger
	newImprover func(cfg *config.Config) usecase.Improver
	newCapturer func(cfg *config.Config) export.Capturer
	loadConfig  func() (*config.Config, error)
}

func defaultEnv() env {
	return env{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		newImprover: func(cfg *config.Config) usecase.Improver {
			if cfg.AI.APIKey == "" {
				return nil
			}
			return ai.NewClient(ai.Options{
				BaseURL:  cfg.AI.BaseURL,
				APIKey:   cfg.AI.APIKey,
				Model:    cfg.AI.Model,
				Language: cfg.AI.Language,
				Timeout:  cfg.AI.Timeout,
			}, nil)
		},
		newCapturer: func(cfg *config.Config) export.Capturer {
			return infra.NewChromedpCapturer(cfg.Export.ChromePath, layout.SurfaceSelector, cfg.Export.Timeout, nil)
		},
		loadConfig: config.Load,
	}
}

func newRootCmd(e env) *cobra.Command {
	root := &cobra.Command{
		Use:           "resumectl",
		Short:         "Work with resume documents from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		convertCmd(),
		layoutCmd(),
		previewCmd(),
		exportCmd(e),
		improveCmd(e),
	)
	return root
}

// readDocument decodes a JSON or YAML resume in any supported shape.
func readDocument(path string) (model.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return model.DecodeYAML(b)
	}
	return model.DecodeAny(b)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <file>",
		Short: "Print a resume in the canonical JSON form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if err := model.Validate(doc); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}
}

func layoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout <file>",
		Short: "Print the layout tree of a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), layout.Project(doc))
		},
	}
}

func previewCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render the printable HTML of a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			page, err := layout.HTML(layout.Project(doc))
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(page)
				return err
			}
			return os.WriteFile(out, page, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	return cmd
}

func exportCmd(e env) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a resume to a paginated PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Export.OutputDir
			}
			p := export.New(e.newCapturer(cfg), export.DirSaver{Dir: dir}, export.Options{
				Scale:      cfg.Export.Scale,
				Quality:    cfg.Export.Quality,
				Page:       export.A4,
				MaxWidthPx: cfg.Export.MaxWidthPx,
			}, e.logger)
			res, err := p.Run(cmd.Context(), doc)
			if err != nil {
				if res != nil && res.Message != "" {
					return fmt.Errorf("%s (%w)", res.Message, err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages)\n", res.Location, res.Pages)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", "", "output directory (default EXPORT_OUTPUT_DIR)")
	return cmd
}

func improveCmd(e env) *cobra.Command {
	var path, hint string
	cmd := &cobra.Command{
		Use:   "improve <file>",
		Short: "Rewrite one field with the text improver and print the document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			cfg, err := e.loadConfig()
			if err != nil {
				return err
			}
			var h ai.Hint
			if hint != "" {
				h = ai.ParseHint(hint)
			}
			res, err := usecase.NewEngine(e.newImprover(cfg), e.logger).RequestTextImprovement(cmd.Context(), doc, path, h)
			if err != nil {
				return err
			}
			if res.Notice != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", res.Notice)
			}
			return writeJSON(cmd.OutOrStdout(), res.Document)
		},
	}
	cmd.Flags().StringVar(&path, "path", "summary", "field path, e.g. summary or experience.0.bullets.1")
	cmd.Flags().StringVar(&hint, "hint", "", "section hint (jobTitle, summary, experience, project, generic)")
	return cmd
}
