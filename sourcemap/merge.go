package sourcemap

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"autoprefix/misc"
)

// MergeInput is everything needed to decide final map content for a single
// file.
type MergeInput struct {
	Paths     PathPair
	MapTarget string     // where the map will be written
	Raw       *SourceMap // produced by transformation, sources relative to Paths.From directory
	Prior     []byte     // content of map already present at MapTarget, nil if none
}

// MergeResult is final map content and annotation to be appended to the
// transformed text. Empty annotation means nothing should be appended.
type MergeResult struct {
	Map        []byte
	Annotation string
}

// Merge corrects raw map for the final location of output and map files. When
// prior map exists its sources (relative to MapTarget directory) are trusted
// over the raw ones and no annotation is produced, the transformed file is
// expected to carry one already.
func Merge(in MergeInput) (*MergeResult, error) {
	if in.Raw == nil {
		return nil, errors.New("transformation did not produce source map")
	}

	var (
		out  = *in.Raw
		base = filepath.Dir(in.Paths.From)
		res  = &MergeResult{}
		err  error
	)

	if in.Prior != nil {
		prior, perr := Parse(in.Prior)
		if perr != nil {
			return nil, &MapParseError{Path: in.MapTarget, Err: perr}
		}
		// prior map was read from MapTarget, its sources are relative to it
		if out.Sources, out.SourceRoot, err = rebaseMapSources(prior, filepath.Dir(in.MapTarget), in.MapTarget); err != nil {
			return nil, err
		}
		out.SourcesContent = prior.SourcesContent
	} else {
		if out.Sources, out.SourceRoot, err = rebaseMapSources(&out, base, in.MapTarget); err != nil {
			return nil, err
		}
		ref, err := Relativize(in.Paths.To, in.MapTarget)
		if err != nil {
			return nil, err
		}
		res.Annotation = AnnotationFor(filepath.ToSlash(ref))
	}

	RebaseMapFile(&out, in.Paths.To)

	if res.Map, err = out.Bytes(); err != nil {
		return nil, fmt.Errorf("unable to serialize source map: %w", err)
	}
	return res, nil
}

// AnnotationFor returns style sheet comment pointing to the map.
func AnnotationFor(mapURL string) string {
	return "/*# sourceMappingURL=" + mapURL + " */"
}

// Annotate appends annotation to text on its own line. Nothing is done for
// empty annotation.
func Annotate(text, annotation string) string {
	if annotation == "" {
		return text
	}
	return text + misc.Linefeed() + annotation
}

// Merger looks for prior map on the file system and merges.
type Merger struct {
	fs  afero.Fs
	log *zap.Logger
}

// NewMerger creates merger working on fs.
func NewMerger(fs afero.Fs, log *zap.Logger) *Merger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Merger{fs: fs, log: log.Named("sourcemap")}
}

// Merge checks mapTarget once, reads prior map if it is there and returns
// result of Merge. File system errors are returned as is (*fs.PathError).
func (m *Merger) Merge(paths PathPair, mapTarget string, raw *SourceMap) (*MergeResult, error) {
	in := MergeInput{Paths: paths, MapTarget: mapTarget, Raw: raw}

	exists, err := afero.Exists(m.fs, mapTarget)
	if err != nil {
		return nil, err
	}
	if exists {
		if in.Prior, err = afero.ReadFile(m.fs, mapTarget); err != nil {
			return nil, err
		}
		if in.Prior == nil {
			// empty file still counts as existing map
			in.Prior = []byte{}
		}
		m.log.Debug("Merging with existing source map", zap.String("map", mapTarget), zap.Int("bytes", len(in.Prior)))
	}
	return Merge(in)
}
