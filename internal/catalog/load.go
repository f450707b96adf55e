package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/waypoint/internal/model"
)

// Load error codes (E001-E099)
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeCompile     = "E007" // Definition failed to compile
	ErrCodeEmpty       = "E008" // No tracks defined
)

// LoadError represents an error that occurred while loading catalog files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir loads every .cue file in dir as one CUE package and builds a
// Catalog from its track, module and badge fields.
//
// Compile errors are collected across all definitions rather than
// returned one at a time.
func LoadDir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, toLoadError(ErrCodeBuildFailed, formatCUEError(err))
	}

	return FromValue(value)
}

// LoadString compiles a single CUE source. Used by tests and tooling that
// embed catalog snippets.
func LoadString(src string) (*Catalog, error) {
	value := cuecontext.New().CompileString(src)
	if err := value.Err(); err != nil {
		return nil, toLoadError(ErrCodeBuildFailed, formatCUEError(err))
	}
	return FromValue(value)
}

// FromValue builds a Catalog from an already evaluated CUE value.
func FromValue(value cue.Value) (*Catalog, error) {
	var (
		tracks  []model.Track
		modules []model.Module
		badges  []model.Badge
		errs    []error
	)

	errs = append(errs, eachField(value, "track", func(v cue.Value) error {
		t, err := CompileTrack(v)
		if err == nil {
			tracks = append(tracks, *t)
		}
		return err
	})...)
	errs = append(errs, eachField(value, "module", func(v cue.Value) error {
		m, err := CompileModule(v)
		if err == nil {
			modules = append(modules, *m)
		}
		return err
	})...)
	errs = append(errs, eachField(value, "badge", func(v cue.Value) error {
		b, err := CompileBadge(v)
		if err == nil {
			badges = append(badges, *b)
		}
		return err
	})...)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(tracks) == 0 {
		return nil, &LoadError{Code: ErrCodeEmpty, Message: "no tracks defined"}
	}

	return New(tracks, modules, badges)
}

// eachField compiles every field under path, collecting errors.
func eachField(value cue.Value, path string, fn func(cue.Value) error) []error {
	v := value.LookupPath(cue.ParsePath(path))
	if !v.Exists() {
		return nil
	}
	iter, err := v.Fields()
	if err != nil {
		return []error{toLoadError(ErrCodeGeneric, fmt.Errorf("iterating %s: %w", path, err))}
	}

	var errs []error
	for iter.Next() {
		if err := fn(iter.Value()); err != nil {
			errs = append(errs, toLoadError(ErrCodeCompile, err))
		}
	}
	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// toLoadError converts a compile error to a LoadError with position info.
func toLoadError(code string, err error) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    code,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: code, Message: err.Error()}
}
