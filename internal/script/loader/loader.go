// Package loader reads directories of game script files into parsed trees.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/encoding/unicode"

	"github.com/louisbranch/empiregen/internal/script/ast"
	"github.com/louisbranch/empiregen/internal/script/token"
)

// DefaultPattern matches the script files of one directory.
const DefaultPattern = "*.txt"

// Loader reads script directories from a file system rooted at the game
// install directory.
type Loader struct {
	FS fs.FS
	// Pattern selects files relative to each directory. Defaults to DefaultPattern.
	Pattern string
	// Strict turns the first unreadable file into an error instead of a skip.
	Strict bool
	// Logf reports skipped files. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// Skipped records a file that failed to tokenize or parse.
type Skipped struct {
	File string
	Err  error
}

// Result is the combined tree of one directory.
type Result struct {
	Root    *ast.Node
	Files   []string
	Skipped []Skipped
}

// New returns a Loader for fsys with default options.
func New(fsys fs.FS) *Loader {
	return &Loader{FS: fsys}
}

func (l *Loader) pattern() string {
	if l.Pattern == "" {
		return DefaultPattern
	}
	return l.Pattern
}

func (l *Loader) logf(format string, args ...any) {
	if l.Logf != nil {
		l.Logf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// files lists matching files under dir in sorted order. A missing directory
// yields no files.
func (l *Loader) files(dir string) ([]string, error) {
	if l.FS == nil {
		return nil, errors.New("loader file system is required")
	}
	if !doublestar.ValidatePattern(l.pattern()) {
		return nil, fmt.Errorf("invalid file pattern %q", l.pattern())
	}
	info, err := fs.Stat(l.FS, dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	sub, err := fs.Sub(l.FS, dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dir, err)
	}
	matches, err := doublestar.Glob(sub, l.pattern(), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s/%s: %w", dir, l.pattern(), err)
	}
	sort.Strings(matches)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = path.Join(dir, m)
	}
	return out, nil
}

func (l *Loader) read(file string) (string, error) {
	data, err := fs.ReadFile(l.FS, file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	clean, err := StripBOM(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", file, err)
	}
	return string(clean), nil
}

// LoadDirectory parses every matching file under dir and concatenates their
// top-level entries in file-name order. Each file parses against its own
// copy of globals.
func (l *Loader) LoadDirectory(dir string, globals ast.Scope) (Result, error) {
	result := Result{Root: ast.NewRoot()}
	files, err := l.files(dir)
	if err != nil {
		return result, err
	}
	for _, file := range files {
		text, err := l.read(file)
		if err != nil {
			return result, err
		}
		root, err := ast.ParseString(text, globals.Clone())
		if err != nil {
			if l.Strict {
				return result, &FileError{File: file, Err: err}
			}
			l.logf("skip %s: %v", file, err)
			result.Skipped = append(result.Skipped, Skipped{File: file, Err: err})
			continue
		}
		result.Root.Children = append(result.Root.Children, root.Children...)
		result.Files = append(result.Files, file)
	}
	return result, nil
}

// LoadVariables collects every top-level `@name = value` definition under
// dir into one scope. A definition may reference any variable defined
// before it, including ones from earlier files.
func (l *Loader) LoadVariables(dir string) (ast.Scope, error) {
	scope := ast.Scope{}
	files, err := l.files(dir)
	if err != nil {
		return scope, err
	}
	for _, file := range files {
		text, err := l.read(file)
		if err != nil {
			return scope, err
		}
		tokens, err := token.Tokenize(text)
		if err != nil {
			if l.Strict {
				return scope, &FileError{File: file, Err: err}
			}
			l.logf("skip variables in %s: %v", file, err)
			continue
		}
		collectDefinitions(tokens, scope)
	}
	return scope, nil
}

func collectDefinitions(tokens []token.Token, scope ast.Scope) {
	for i := 0; i+1 < len(tokens); i++ {
		def := tokens[i]
		if def.Kind != token.VariableDef {
			continue
		}
		value := tokens[i+1]
		switch {
		case value.IsScalar():
			scope[def.Value] = value.Value
			i++
		case value.Kind == token.VariableRef:
			if resolved, ok := scope[value.Value]; ok {
				scope[def.Value] = resolved
			}
			i++
		}
	}
}

// FileError ties a tokenize or parse failure to its file.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(data []byte) ([]byte, error) {
	return unicode.UTF8BOM.NewDecoder().Bytes(data)
}
