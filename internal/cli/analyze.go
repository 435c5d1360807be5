package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/feature-replicator/internal/catalog"
	"github.com/HendryAvila/feature-replicator/internal/feature"
	"github.com/HendryAvila/feature-replicator/internal/model"
	"github.com/HendryAvila/feature-replicator/internal/templates"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		language string
		maxFiles int
	)
	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List candidate features of a repository",
		Long: `List the candidate features of a repository as JSON.

The language comes from --language, or from docs/TECH_STACK_STATUS.json
under path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxFiles < feature.MinMaxFiles || maxFiles > feature.MaxMaxFiles {
				return fmt.Errorf("--max-files must be between %d and %d", feature.MinMaxFiles, feature.MaxMaxFiles)
			}
			cfg, logger, closeLog, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			svc := feature.NewService(cfg, nil, logger)
			res, err := svc.List(cmd.Context(), feature.ListRequest{
				Path:      pathArg(args),
				TechStack: stackFlag(language),
				MaxFiles:  maxFiles,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "", "language of the repository (overrides the descriptor)")
	cmd.Flags().IntVar(&maxFiles, "max-files", feature.DefaultMaxFiles, "maximum number of files to scan")
	return cmd
}

func newScanCmd(opts *options) *cobra.Command {
	var (
		id       string
		files    []string
		language string
		maxDepth int
	)
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan one feature and print its specification",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxDepth < feature.MinMaxDepth || maxDepth > feature.MaxMaxDepth {
				return fmt.Errorf("--max-depth must be between %d and %d", feature.MinMaxDepth, feature.MaxMaxDepth)
			}
			cfg, logger, closeLog, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			svc := feature.NewService(cfg, nil, logger)
			spec, err := svc.Scan(cmd.Context(), feature.ScanRequest{
				FeatureID:  id,
				EntryFiles: files,
				Path:       pathArg(args),
				TechStack:  stackFlag(language),
				MaxDepth:   maxDepth,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), spec)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "feature id")
	cmd.Flags().StringSliceVarP(&files, "file", "f", nil, "entry file relative to path (repeatable)")
	cmd.Flags().StringVarP(&language, "language", "l", "", "language of the repository (overrides the descriptor)")
	cmd.Flags().IntVar(&maxDepth, "max-depth", feature.DefaultMaxDepth, "call depth to follow")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		specPath  string
		out       string
		noCatalog bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a scanned specification as Markdown",
		Long: `Render a specification produced by "scan" as Markdown.

Use "-" as --spec to read the specification from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, closeLog, err := opts.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			spec, err := readSpec(cmd.InOrStdin(), specPath)
			if err != nil {
				return err
			}
			renderer, err := templates.NewRenderer()
			if err != nil {
				return fmt.Errorf("creating template renderer: %w", err)
			}
			res, err := feature.Export(renderer, spec, out)
			if err != nil {
				return err
			}

			if !noCatalog {
				store, err := catalog.New(catalog.Config{DataDir: cfg.CatalogDir})
				if err != nil {
					logger.Warn("export catalog disabled", "dir", cfg.CatalogDir, "error", err)
				} else {
					defer store.Close()
					if _, err := store.Record(spec, res.FilePath); err != nil {
						logger.Warn("export not recorded in catalog", "file", res.FilePath, "error", err)
					}
				}
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&specPath, "spec", "", "specification JSON file, or - for stdin")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory")
	cmd.Flags().BoolVar(&noCatalog, "no-catalog", false, "do not record the export in the catalog")
	_ = cmd.MarkFlagRequired("spec")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func stackFlag(language string) *model.TechStack {
	if language == "" {
		return nil
	}
	return &model.TechStack{Language: language}
}

func readSpec(stdin io.Reader, path string) (*model.FeatureSpec, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading spec: %w", err)
	}
	var spec model.FeatureSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing spec %s: %w", path, err)
	}
	return &spec, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
