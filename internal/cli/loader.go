package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/ordering/internal/compiler"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the collections loaded from a directory.
type LoadResult struct {
	Collections []compiler.Collection // sorted by name
	FileCount   int                   // Number of CUE files found
}

// Lookup returns the named collection.
func (r *LoadResult) Lookup(name string) (compiler.Collection, bool) {
	for _, c := range r.Collections {
		if c.Name() == name {
			return c, true
		}
	}
	return compiler.Collection{}, false
}

// LoadError represents an error that occurred during definition loading.
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

// LoadCollections loads and compiles the collection definitions in dir.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadCollections(dir string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definitions directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definitions directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{FileCount: len(cueFiles)}
	var errs []error

	collections := value.LookupPath(cue.ParsePath("collection"))
	if !collections.Exists() {
		return result, []error{&LoadError{Code: ErrCodeNoCollections, Message: "no collections found in definitions"}}
	}
	iter, err := collections.Fields()
	if err != nil {
		return result, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating collections: %v", err)}}
	}
	for iter.Next() {
		c, compileErr := compiler.CompileCollection(iter.Value())
		if compileErr != nil {
			errs = append(errs, convertCompileError(compileErr, "collection."+iter.Label()))
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.Collections = append(result.Collections, *c)
	}

	if len(result.Collections) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoCollections, Message: "no collections found in definitions"})
	}
	sort.Slice(result.Collections, func(i, j int) bool {
		return result.Collections[i].Name() < result.Collections[j].Name()
	})
	return result, errs
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

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBuildFailed   = "E006" // CUE build failed
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeNoCollections = "E008" // No collection definitions
	ErrCodeBadArgument   = "E009" // Malformed flag or argument

	// Definition errors
	ErrCodePositionField     = "E101" // Missing or invalid position field
	ErrCodeGroupFields       = "E102" // Invalid group field list
	ErrCodeInvalidCollection = "E103" // Inconsistent definition
	ErrCodeListFields        = "E104" // Incomplete list key/value

	// Request errors
	ErrCodeUnknownCollection = "E201" // No such collection
	ErrCodeRecordNotFound    = "E202" // No such record
	ErrCodeGroupRequired     = "E203" // Group field missing
	ErrCodeInvalidPosition   = "E204" // Position is not an integer
	ErrCodeFieldReserved     = "E205" // Position or group written as a field
	ErrCodeConsistency       = "E206" // Group is not contiguous
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "position":
		return ErrCodePositionField
	case "group":
		return ErrCodeGroupFields
	case "collection":
		return ErrCodeInvalidCollection
	case "list", "list.key", "list.value":
		return ErrCodeListFields
	default:
		return ErrCodeGeneric
	}
}

// unknownCollectionError is returned for a collection name that no
// definition declares.
type unknownCollectionError struct {
	name  string
	known []string
}

func (e *unknownCollectionError) Error() string {
	return fmt.Sprintf("unknown collection %q (defined: %v)", e.name, e.known)
}
