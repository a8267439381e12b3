package engine

import (
	"strings"
)

// RerollCategory names what a reroll changes.
type RerollCategory string

const (
	RerollEthics           RerollCategory = "ethics"
	RerollAuthority        RerollCategory = "authority"
	RerollCivic1           RerollCategory = "civic1"
	RerollCivic2           RerollCategory = "civic2"
	RerollOrigin           RerollCategory = "origin"
	RerollTraits           RerollCategory = "traits"
	RerollTrait            RerollCategory = "trait"
	RerollHomeworld        RerollCategory = "homeworld"
	RerollShipset          RerollCategory = "shipset"
	RerollLeader           RerollCategory = "leader"
	RerollSecondarySpecies RerollCategory = "secondary_species"
)

// RerollCategories returns every category in display order.
func RerollCategories() []RerollCategory {
	return []RerollCategory{
		RerollEthics, RerollAuthority, RerollCivic1, RerollCivic2, RerollOrigin,
		RerollTraits, RerollTrait, RerollHomeworld, RerollShipset, RerollLeader,
		RerollSecondarySpecies,
	}
}

// ParseRerollCategory accepts a category name in any case.
func ParseRerollCategory(name string) (RerollCategory, error) {
	want := RerollCategory(strings.ToLower(strings.TrimSpace(name)))
	for _, c := range RerollCategories() {
		if c == want {
			return c, nil
		}
	}
	return "", unknownCategory(name)
}

// Session holds one generated empire and its single reroll. A Session is
// owned by one caller and is not safe for concurrent use.
type Session struct {
	ID         string
	empire     Empire
	rerollUsed bool
}

// NewSession starts a session for a fresh generation.
func NewSession(id string, e Empire) *Session {
	return &Session{ID: id, empire: e.Clone()}
}

// RestoreSession rebuilds a stored session.
func RestoreSession(id string, e Empire, rerollUsed bool) *Session {
	return &Session{ID: id, empire: e.Clone(), rerollUsed: rerollUsed}
}

// Empire returns a copy of the current empire.
func (s *Session) Empire() Empire { return s.empire.Clone() }

// RerollUsed reports whether the session's reroll has been spent.
func (s *Session) RerollUsed() bool { return s.rerollUsed }

// Reset replaces the empire with a new generation and restores the reroll.
func (s *Session) Reset(e Empire) {
	s.empire = e.Clone()
	s.rerollUsed = false
}

// Availability reports per category whether a reroll may be requested.
// The flag is shared: every category flips together once the reroll is used.
func (s *Session) Availability() map[RerollCategory]bool {
	out := make(map[RerollCategory]bool, len(RerollCategories()))
	for _, c := range RerollCategories() {
		out[c] = !s.rerollUsed
	}
	return out
}

func (s *Session) commit(e Empire) {
	s.empire = e.Clone()
	s.rerollUsed = true
}
