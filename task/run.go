package task

import (
	"context"
	"errors"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"autoprefix/config"
	"autoprefix/diff"
	"autoprefix/files"
	"autoprefix/state"
)

// Run is the "run" command action. Sources given on the command line form a
// single file group, otherwise file groups come from configuration. Flags
// override configured task options.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("run")

	opts, groups := prepareOptions(env.Cfg.Task, cmd)
	if len(groups) == 0 {
		return errors.New("no input sources have been specified")
	}

	sources, missing, err := files.Expand(env.Fs, groups)
	if err != nil {
		return err
	}
	for _, err := range missing {
		log.Warn("Skipping source", zap.Error(err))
	}
	if len(sources) == 0 {
		log.Warn("Nothing to process")
		return nil
	}

	c := NewCompiler(env.Fs, NewPrefixEngine(env.Log, env.Rpt), diff.Differ{}, opts, env.Rpt, env.Log)
	return c.CompileAll(ctx, sources)
}

// Flags returns "run" command flags.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "browsers", Aliases: []string{"b"}, Usage: "browser `QUERY` selecting prefixes (may be repeated)"},
		&cli.StringFlag{Name: "map", Aliases: []string{"m"}, Usage: "source maps: true, false or `PREFIX` for map file names"},
		&cli.StringFlag{Name: "diff", Usage: "diff output: true, false or `PATH` of diff file"},
		&cli.StringFlag{Name: "dest", Usage: "destination `PATH` for sources given on command line, directory if ends with separator"},
		&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Usage: "process up to `N` files in parallel"},
	}
}

func prepareOptions(cfg config.TaskConfig, cmd *cli.Command) (Options, []files.Group) {
	opts := Options{
		Browsers: cfg.Browsers,
		Map:      cfg.Map,
		Diff:     cfg.Diff,
		Jobs:     cfg.Jobs,
	}
	if cmd.IsSet("browsers") {
		opts.Browsers = cmd.StringSlice("browsers")
	}
	if cmd.IsSet("map") {
		opts.Map = config.ParseMapOption(cmd.String("map"))
	}
	if cmd.IsSet("diff") {
		opts.Diff = config.ParseDiffOption(cmd.String("diff"))
	}
	if cmd.IsSet("jobs") {
		opts.Jobs = cmd.Int("jobs")
	}

	if cmd.Args().Len() > 0 {
		return opts, []files.Group{{Src: cmd.Args().Slice(), Dest: cmd.String("dest")}}
	}

	groups := make([]files.Group, 0, len(cfg.Files))
	for _, g := range cfg.Files {
		groups = append(groups, files.Group{Src: g.Src, Dest: g.Dest, Nonull: g.Nonull})
	}
	return opts, groups
}
