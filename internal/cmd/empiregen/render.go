package empiregen

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/louisbranch/empiregen/internal/engine"
	i18ncatalog "github.com/louisbranch/empiregen/internal/platform/i18n/catalog"
	"github.com/louisbranch/empiregen/internal/storage"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// sessionView is the machine-readable rendering of a session.
type sessionView struct {
	Session      string          `json:"session" yaml:"session"`
	RerollUsed   bool            `json:"reroll_used" yaml:"reroll_used"`
	Availability map[string]bool `json:"availability" yaml:"availability"`
	Catalog      string          `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Empire       engine.Empire   `json:"empire" yaml:"empire"`
}

func newSessionView(rec storage.SessionRecord) sessionView {
	availability := map[string]bool{}
	for c, ok := range rec.Session().Availability() {
		availability[string(c)] = ok
	}
	return sessionView{
		Session:      rec.ID,
		RerollUsed:   rec.RerollUsed,
		Availability: availability,
		Catalog:      rec.CatalogFingerprint,
		Empire:       rec.Empire,
	}
}

func renderSession(w io.Writer, format, locale string, rec storage.SessionRecord) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", formatText:
		return writeSessionText(w, locale, rec)
	case formatJSON:
		return writeJSON(w, newSessionView(rec))
	case formatYAML:
		return writeYAML(w, newSessionView(rec))
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderCounts(w io.Writer, format string, counts map[string]int) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", formatText:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		kinds := make([]string, 0, len(counts))
		for k := range counts {
			kinds = append(kinds, k)
		}
		slices.Sort(kinds)
		for _, k := range kinds {
			fmt.Fprintf(tw, "%s\t%d\n", k, counts[k])
		}
		return tw.Flush()
	case formatJSON:
		return writeJSON(w, counts)
	case formatYAML:
		return writeYAML(w, counts)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// labeler resolves CLI labels, falling back to the base locale.
type labeler struct {
	bundle *i18ncatalog.Bundle
	locale string
}

func (l labeler) label(key string, args ...any) string {
	msg, ok := l.bundle.Message(l.locale, key)
	if !ok {
		msg = key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func writeSessionText(w io.Writer, locale string, rec storage.SessionRecord) error {
	l := labeler{bundle: i18ncatalog.Default(), locale: locale}
	e := rec.Empire
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(key, value string) {
		fmt.Fprintf(tw, "%s\t%s\n", l.label(key), value)
	}

	row("cli.session", rec.ID)
	row("cli.ethics", displayNames(e.Ethics))
	row("cli.authority", displayName(e.Authority))
	row("cli.civics", displayNames(e.Civics))
	row("cli.origin", displayName(e.Origin))
	row("cli.species", displayName(e.Archetype)+" / "+displayName(e.SpeciesClass))
	row("cli.traits", fmt.Sprintf("%s (%s)", traitList(e.Traits), l.label("cli.points", e.TraitPointsUsed, e.TraitPointsBudget)))
	row("cli.homeworld", displayName(e.Homeworld))
	if e.HabitabilityPreference != "" && e.HabitabilityPreference != e.Homeworld {
		row("cli.habitability", displayName(e.HabitabilityPreference))
	}
	row("cli.shipset", displayName(e.Shipset))
	row("cli.leader", leaderLine(e.LeaderClass, e.LeaderTraits))
	if ss := e.SecondarySpecies; ss != nil {
		traits := append(slices.Clone(ss.EnforcedTraits), ss.AdditionalTraits...)
		row("cli.secondary_species", fmt.Sprintf("%s: %s (%s)", displayName(ss.SpeciesClass), traitList(traits),
			l.label("cli.points", ss.PointsUsed, ss.PointsBudget)))
	}
	status := l.label("cli.reroll_available")
	if rec.RerollUsed {
		status = l.label("cli.reroll_spent")
	}
	row("cli.reroll", status)
	return tw.Flush()
}

func leaderLine(class string, traits []string) string {
	if len(traits) == 0 {
		return displayName(class)
	}
	return displayName(class) + ": " + displayNames(traits)
}

// traitList marks enforced traits with an asterisk.
func traitList(traits []engine.TraitPick) string {
	names := make([]string, len(traits))
	for i, t := range traits {
		names[i] = displayName(t.ID)
		if t.Enforced {
			names[i] += "*"
		}
	}
	return strings.Join(names, ", ")
}

func displayNames(ids []string) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = displayName(id)
	}
	return strings.Join(names, ", ")
}

// idPrefixes are stripped from script ids for display. Longer prefixes come
// first so leader_trait_ wins over trait_.
var idPrefixes = []string{"leader_trait_", "origin_", "civic_", "ethic_", "trait_", "auth_", "pc_"}

// displayName turns a script id into a readable name:
// "ethic_fanatic_militarist" becomes "Fanatic Militarist".
func displayName(id string) string {
	if id == "" {
		return "-"
	}
	name := id
	for _, p := range idPrefixes {
		if rest, ok := strings.CutPrefix(name, p); ok && rest != "" {
			name = rest
			break
		}
	}
	return cases.Title(language.English).String(strings.ReplaceAll(strings.ToLower(name), "_", " "))
}
