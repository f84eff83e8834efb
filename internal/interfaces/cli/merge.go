package cli

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/turtacn/ChemScreen/internal/domain/chirality"
	"github.com/turtacn/ChemScreen/internal/domain/merge"
	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/internal/infrastructure/maefile"
	"github.com/turtacn/ChemScreen/internal/infrastructure/minimize"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/metrics"
	"github.com/turtacn/ChemScreen/pkg/errors"
)

// MergeOptions holds the merge subcommand flags.
type MergeOptions struct {
	Groups      []string
	Output      string
	Directory   string
	Mini        bool
	MetricsAddr string
}

// NewMergeCmd creates the merge subcommand.
func NewMergeCmd() *cobra.Command {
	opts := &MergeOptions{}

	cmd := &cobra.Command{
		Use:   "merge -g file[,file...] [-g file[,file...] ...]",
		Short: "Merge fragment groups into composite structures",
		Long: "Each --group occurrence names one fragment group: a comma-separated list of\n" +
			"structure files whose structures (after enantiomer expansion) form the group.\n" +
			"The first group seeds the working set; every further group is merged against\n" +
			"it combinatorially.  Results go to --output, --directory, or stdout.",
		Example: "  chemscreen merge -g cores.mae -g ligands_a.mae,ligands_b.mae -o merged.mae\n" +
			"  chemscreen merge -g cores.mae -g ligands.mae -d out/ --mini",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMerge(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVarP(&opts.Groups, "group", "g", nil,
		"fragment group: comma-separated structure files (repeatable, ordered)")
	f.StringVarP(&opts.Output, "output", "o", "", "write all merged structures to one file")
	f.StringVarP(&opts.Directory, "directory", "d", "", "write one file per merged structure into this directory")
	f.BoolVarP(&opts.Mini, "mini", "m", false, "run merged structures through the configured minimiser")
	f.StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address during the run")
	cobra.CheckErr(cmd.MarkFlagRequired("group"))

	return cmd
}

func runMerge(cmd *cobra.Command, opts *MergeOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	log := cliCtx.Logger.Named("merge-cmd")

	if opts.Output != "" && opts.Directory != "" {
		return errors.New(errors.CodeInvalidParam,
			"--output and --directory are mutually exclusive")
	}

	mets := startMetrics(cliCtx, opts, log)

	groups, err := loadGroups(opts.Groups, mets, log)
	if err != nil {
		return err
	}

	start := time.Now()
	pipeline := merge.NewPipeline(log, mets)
	results, err := pipeline.Run(groups)
	if err != nil {
		return err
	}

	if opts.Mini {
		minCfg := cliCtx.Config.Minimize
		runner, err := minimize.NewRunner(minimize.Options{
			Command: minCfg.Command,
			Args:    minCfg.Args,
			Timeout: minCfg.Timeout,
			WorkDir: minCfg.WorkDir,
		}, log)
		if err != nil {
			return err
		}
		results, err = runner.Minimize(cmd.Context(), results)
		if err != nil {
			return err
		}
	}

	chirality.NewLabeler(log).LabelAll(results)

	if err := writeResults(opts, results); err != nil {
		return err
	}
	log.Info("merge complete",
		logging.Int("groups", len(groups)),
		logging.Int("structures", len(results)),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}

// startMetrics registers a fresh prometheus registry and, when an address is
// configured, serves it for the duration of the run.  Returns nil when
// metrics are disabled.
func startMetrics(cliCtx *CLIContext, opts *MergeOptions, log logging.Logger) *metrics.Set {
	addr := cliCtx.Config.Metrics.Addr
	enabled := cliCtx.Config.Metrics.Enabled
	if opts.MetricsAddr != "" {
		addr = opts.MetricsAddr
		enabled = true
	}
	if !enabled {
		return nil
	}

	registry := prometheus.NewRegistry()
	mets := metrics.NewSet(registry)
	go func() {
		if err := http.ListenAndServe(addr, metrics.Handler(registry)); err != nil {
			log.Warn("metrics listener stopped", logging.Err(err))
		}
	}()
	log.Info("serving metrics", logging.String("addr", addr))
	return mets
}

// loadGroups reads every file of every group spec and applies enantiomer
// expansion, preserving group order and in-group file order.
func loadGroups(specs []string, mets *metrics.Set, log logging.Logger) ([][]*structure.Structure, error) {
	groups := make([][]*structure.Structure, 0, len(specs))
	for _, spec := range specs {
		var group []*structure.Structure
		for _, file := range strings.Split(spec, ",") {
			file = strings.TrimSpace(file)
			if file == "" {
				return nil, errors.Newf(errors.CodeInvalidParam, "empty file name in group %q", spec)
			}
			structs, err := maefile.ReadFile(file)
			if err != nil {
				return nil, err
			}
			group = append(group, structs...)
		}
		if len(group) == 0 {
			return nil, errors.Newf(errors.CodeInvalidParam, "group %q contains no structures", spec)
		}
		group = merge.ExpandGroup(group)
		mets.AddStructuresLoaded(len(group))
		log.Debug("group loaded",
			logging.String("files", spec),
			logging.Int("structures", len(group)))
		groups = append(groups, group)
	}
	return groups, nil
}

func writeResults(opts *MergeOptions, results []*structure.Structure) error {
	switch {
	case opts.Output != "":
		return maefile.WriteFile(opts.Output, results)
	case opts.Directory != "":
		_, err := maefile.WriteDir(opts.Directory, results)
		return err
	default:
		return maefile.Write(os.Stdout, results)
	}
}
