package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	apperrors "github.com/louisbranch/empiregen/internal/platform/errors"
	"github.com/louisbranch/empiregen/internal/script/ast"
	"github.com/louisbranch/empiregen/internal/script/loader"
	"github.com/louisbranch/empiregen/internal/script/token"
)

// Directories read by Load, relative to the game install directory.
const (
	DirScriptedVariables = "common/scripted_variables"
	DirEthics            = "common/ethics"
	DirAuthorities       = "common/governments/authorities"
	DirCivics            = "common/governments/civics"
	DirArchetypes        = "common/species_archetypes"
	DirSpeciesClasses    = "common/species_classes"
	DirTraits            = "common/traits"
	DirPlanetClasses     = "common/planet_classes"
	DirGraphicalCulture  = "common/graphical_culture"
)

// Options tune how script files are read.
type Options struct {
	// Pattern selects files in each directory. Defaults to loader.DefaultPattern.
	Pattern string
	// Strict fails on the first unparsable file instead of skipping it.
	Strict bool
}

// Load reads a game install directory into a Catalog.
func Load(gamePath string, opts Options) (*Catalog, error) {
	if gamePath == "" {
		return nil, apperrors.WithMetadata(apperrors.CodeScriptLoad, "game path is required", map[string]string{"Path": gamePath})
	}
	info, err := os.Stat(gamePath)
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeScriptLoad, "stat game path", map[string]string{"Path": gamePath}, err)
	}
	if !info.IsDir() {
		return nil, apperrors.WithMetadata(apperrors.CodeScriptLoad, "game path is not a directory", map[string]string{"Path": gamePath})
	}
	return LoadFS(os.DirFS(gamePath), gamePath, opts)
}

// LoadFS reads a catalog from fsys. name identifies fsys in errors.
func LoadFS(fsys fs.FS, name string, opts Options) (*Catalog, error) {
	l := &loader.Loader{FS: fsys, Pattern: opts.Pattern, Strict: opts.Strict}

	globals, err := l.LoadVariables(DirScriptedVariables)
	if err != nil {
		return nil, loadError(name, err)
	}
	log.Printf("catalog: loaded %d scripted variables", len(globals))

	read := func(dir string) (*ast.Node, error) {
		res, err := l.LoadDirectory(dir, globals)
		if err != nil {
			return nil, loadError(name, err)
		}
		if len(res.Skipped) > 0 {
			log.Printf("catalog: %s: skipped %d of %d files", dir, len(res.Skipped), len(res.Skipped)+len(res.Files))
		}
		return res.Root, nil
	}

	var d Data
	steps := []struct {
		dir     string
		extract func(*ast.Node)
	}{
		{DirEthics, func(n *ast.Node) { d.Ethics = ExtractEthics(n) }},
		{DirAuthorities, func(n *ast.Node) { d.Authorities = ExtractAuthorities(n) }},
		{DirCivics, func(n *ast.Node) {
			d.Civics = ExtractCivics(n)
			d.Origins = ExtractOrigins(n)
		}},
		{DirArchetypes, func(n *ast.Node) { d.Archetypes = ExtractArchetypes(n) }},
		{DirSpeciesClasses, func(n *ast.Node) { d.SpeciesClasses = ExtractSpeciesClasses(n) }},
		{DirTraits, func(n *ast.Node) {
			d.Traits = ExtractTraits(n)
			d.LeaderTraits = ExtractLeaderTraits(n)
		}},
		{DirPlanetClasses, func(n *ast.Node) { d.PlanetClasses = ExtractPlanetClasses(n) }},
		{DirGraphicalCulture, func(n *ast.Node) { d.GraphicalCultures = ExtractGraphicalCultures(n) }},
	}
	for _, step := range steps {
		root, err := read(step.dir)
		if err != nil {
			return nil, err
		}
		step.extract(root)
	}

	c := New(d)
	if err := c.validate(name); err != nil {
		return nil, err
	}
	log.Printf("catalog: %v", c.Counts())
	return c, nil
}

// validate rejects catalogs that cannot produce any empire.
func (c *Catalog) validate(name string) error {
	required := []struct {
		entity string
		n      int
	}{
		{"ethics", len(c.data.Ethics)},
		{"authorities", len(c.data.Authorities)},
		{"civics", len(c.data.Civics)},
		{"origins", len(c.data.Origins)},
		{"species archetypes", len(c.data.Archetypes)},
	}
	for _, r := range required {
		if r.n == 0 {
			return apperrors.WithMetadata(apperrors.CodeCatalogEmpty,
				fmt.Sprintf("no %s found", r.entity),
				map[string]string{"Entity": r.entity, "Path": name})
		}
	}
	return nil
}

func loadError(name string, err error) error {
	var fileErr *loader.FileError
	if !errors.As(err, &fileErr) {
		return apperrors.WrapWithMetadata(apperrors.CodeScriptLoad, "load game files", map[string]string{"Path": name}, err)
	}
	meta := map[string]string{"File": fileErr.File, "Detail": fileErr.Err.Error(), "Path": name}
	var tokErr *token.Error
	if errors.As(err, &tokErr) {
		return apperrors.WrapWithMetadata(apperrors.CodeScriptTokenize, "tokenize "+fileErr.File, meta, err)
	}
	return apperrors.WrapWithMetadata(apperrors.CodeScriptParse, "parse "+fileErr.File, meta, err)
}
