package task

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/afero"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap/zaptest"

	"autoprefix/config"
	"autoprefix/files"
	"autoprefix/state"
)

// runCommand executes "run" with given arguments and action.
func runCommand(t *testing.T, ctx context.Context, action cli.ActionFunc, args ...string) error {
	t.Helper()
	cmd := &cli.Command{Name: "run", Flags: Flags(), Action: action}
	return cmd.Run(ctx, append([]string{"run"}, args...))
}

func TestPrepareOptions(t *testing.T) {
	cfg := config.TaskConfig{
		Browsers: []string{"ie 9"},
		Map:      config.MapOption{Enabled: true},
		Jobs:     1,
		Files: []config.FileGroup{
			{Src: []string{"src/*.css"}, Dest: "dist/", Nonull: true},
		},
	}

	t.Run("configuration only", func(t *testing.T) {
		err := runCommand(t, context.Background(), func(_ context.Context, cmd *cli.Command) error {
			opts, groups := prepareOptions(cfg, cmd)
			if !slices.Equal(opts.Browsers, []string{"ie 9"}) || !opts.Map.Enabled || opts.Diff.Enabled || opts.Jobs != 1 {
				t.Errorf("opts = %+v", opts)
			}
			want := []files.Group{{Src: []string{"src/*.css"}, Dest: "dist/", Nonull: true}}
			if len(groups) != 1 || !slices.Equal(groups[0].Src, want[0].Src) || groups[0].Dest != want[0].Dest || !groups[0].Nonull {
				t.Errorf("groups = %+v", groups)
			}
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
	})

	t.Run("command line overrides", func(t *testing.T) {
		err := runCommand(t, context.Background(), func(_ context.Context, cmd *cli.Command) error {
			opts, groups := prepareOptions(cfg, cmd)
			if !slices.Equal(opts.Browsers, []string{"firefox 3", "opera 12"}) {
				t.Errorf("browsers = %q", opts.Browsers)
			}
			if opts.Map.Enabled || !opts.Diff.Enabled || opts.Diff.Path != "out.patch" || opts.Jobs != 3 {
				t.Errorf("opts = %+v", opts)
			}
			if len(groups) != 1 || !slices.Equal(groups[0].Src, []string{"a.css", "b.css"}) || groups[0].Dest != "out/" || groups[0].Nonull {
				t.Errorf("groups = %+v", groups)
			}
			return nil
		}, "--browsers", "firefox 3", "--browsers", "opera 12", "--map", "false", "--diff", "out.patch", "--jobs", "3", "--dest", "out/", "a.css", "b.css")
		if err != nil {
			t.Fatal(err)
		}
	})
}

func testContext(t *testing.T, fs afero.Fs) context.Context {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	var err error
	if env.Cfg, err = config.LoadConfiguration(""); err != nil {
		t.Fatalf("load config: %v", err)
	}
	env.Log = zaptest.NewLogger(t)
	env.Fs = fs
	return ctx
}

func TestRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/proj/src/a.css", []byte("a {\n  user-select: none;\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx := testContext(t, fs)

	err := runCommand(t, ctx, Run, "--browsers", "firefox", "--map", "true", "--diff", "true", "--dest", "/proj/dist/", "/proj/src/*.css", "/proj/src/missing.css")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out, err := afero.ReadFile(fs, "/proj/dist/a.css")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "  -moz-user-select: none;\n  user-select: none;") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.HasSuffix(string(out), "/*# sourceMappingURL=a.css.map */") {
		t.Errorf("annotation missing:\n%s", out)
	}
	patch, err := afero.ReadFile(fs, "/proj/dist/a.css.patch")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(patch), "+  -moz-user-select: none;\n") {
		t.Errorf("unexpected diff:\n%s", patch)
	}
}

func TestRun_NoSources(t *testing.T) {
	ctx := testContext(t, afero.NewMemMapFs())
	if err := runCommand(t, ctx, Run); err == nil {
		t.Error("expected error when nothing is configured")
	}
}

func TestRun_NothingMatched(t *testing.T) {
	ctx := testContext(t, afero.NewMemMapFs())
	if err := runCommand(t, ctx, Run, "/none/*.css"); err != nil {
		t.Errorf("Run() error = %v, want nil", err)
	}
}
