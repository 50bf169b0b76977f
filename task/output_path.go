package task

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"autoprefix/config"
	"autoprefix/files"
)

// buildOutputPath returns where transformed source goes. Empty destination
// means in-place. Destination ending with path separator or naming existing
// directory receives file under its original name, otherwise destination is
// the output file itself.
func buildOutputPath(fs afero.Fs, src files.Source) string {
	if src.Dest == "" {
		return src.Path
	}
	if isDirName(src.Dest) {
		return filepath.Join(src.Dest, filepath.Base(src.Path))
	}
	if dir, err := afero.IsDir(fs, src.Dest); err == nil && dir {
		return filepath.Join(src.Dest, filepath.Base(src.Path))
	}
	return src.Dest
}

// buildMapPath returns map location for the output. Map prefix is prepended
// to the original file name as is, so "maps/" puts all maps into directory
// while "maps/v1-" also changes names.
func buildMapPath(input, output string, opt config.MapOption) string {
	if opt.Prefix == "" {
		return output + ".map"
	}
	return filepath.FromSlash(opt.Prefix) + filepath.Base(input) + ".map"
}

// buildDiffPath returns diff location for the output.
func buildDiffPath(output string, opt config.DiffOption) string {
	if opt.Path == "" {
		return output + ".patch"
	}
	return filepath.FromSlash(opt.Path)
}

func isDirName(path string) bool {
	return strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator))
}
