// Package minimize runs merged structures through an external geometry
// minimiser.  The pipeline treats minimisation as an opaque boundary: write
// the structures to a scratch file, hand the file to the configured command,
// read the structures back when it exits.
package minimize

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/turtacn/ChemScreen/internal/domain/structure"
	"github.com/turtacn/ChemScreen/internal/infrastructure/maefile"
	"github.com/turtacn/ChemScreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemScreen/pkg/errors"
)

// FilePlaceholder in a configured argument is replaced with the scratch file
// path.  When no argument carries it, the path is appended as the final
// argument.
const FilePlaceholder = "{file}"

// Minimizer refines the geometry of a batch of structures.
type Minimizer interface {
	Minimize(ctx context.Context, structs []*structure.Structure) ([]*structure.Structure, error)
}

// Nop is the Minimizer used when minimisation is disabled; it returns its
// input unchanged.
type Nop struct{}

func (Nop) Minimize(_ context.Context, structs []*structure.Structure) ([]*structure.Structure, error) {
	return structs, nil
}

// Options configures a Runner.
type Options struct {
	// Command is the minimiser executable.  Required.
	Command string

	// Args are passed to the command, with FilePlaceholder substitution.
	Args []string

	// Timeout bounds one minimisation run.  Zero means no deadline beyond
	// the caller's context.
	Timeout time.Duration

	// WorkDir hosts the scratch file.  Empty means the system temp dir.
	WorkDir string
}

// Runner executes an external minimiser command that rewrites the scratch
// file in place, bmin-style: it blocks until the command exits.
type Runner struct {
	opts Options
	log  logging.Logger
}

// NewRunner validates opts and constructs a Runner.  A nil logger falls back
// to the nop logger.
func NewRunner(opts Options, log logging.Logger) (*Runner, error) {
	if opts.Command == "" {
		return nil, errors.New(errors.CodeValidation, "minimiser command is not configured")
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Runner{opts: opts, log: log.Named("minimize")}, nil
}

// Minimize writes structs to a scratch file, runs the command on it, and
// reads the minimised structures back.  The scratch file is removed on every
// path.  Any failure is fatal to the run.
func (r *Runner) Minimize(ctx context.Context, structs []*structure.Structure) ([]*structure.Structure, error) {
	tmp, err := os.CreateTemp(r.opts.WorkDir, "chemscreen-mini-*.mae")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMinimizeLaunch, "creating scratch file")
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := maefile.WriteFile(path, structs); err != nil {
		return nil, err
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	args := substituteArgs(r.opts.Args, path)
	r.log.Info("running minimiser",
		logging.String("command", r.opts.Command),
		logging.Int("structures", len(structs)))

	start := time.Now()
	out, err := exec.CommandContext(ctx, r.opts.Command, args...).CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(err, errors.CodeTimeout, "minimiser timed out").
				WithDetail("command=" + r.opts.Command)
		}
		var exit *exec.ExitError
		if stderrors.As(err, &exit) {
			return nil, errors.Wrap(err, errors.CodeMinimizeFailed, "minimiser exited with an error").
				WithDetail(strings.TrimSpace(string(out)))
		}
		return nil, errors.Wrap(err, errors.CodeMinimizeLaunch, "starting minimiser").
			WithDetail("command=" + r.opts.Command)
	}
	r.log.Info("minimiser finished",
		logging.Duration("elapsed", time.Since(start)))

	minimised, err := maefile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(minimised) != len(structs) {
		return nil, errors.Newf(errors.CodeMinimizeFailed,
			"minimiser returned %d structures, expected %d", len(minimised), len(structs))
	}
	return minimised, nil
}

func substituteArgs(args []string, path string) []string {
	out := make([]string, len(args))
	found := false
	for i, a := range args {
		if strings.Contains(a, FilePlaceholder) {
			found = true
			a = strings.ReplaceAll(a, FilePlaceholder, path)
		}
		out[i] = a
	}
	if !found {
		out = append(out, path)
	}
	return out
}
