package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
)

// Snapshot returns a copy of the entity lists c was built from.
func (c *Catalog) Snapshot() Data {
	return Data{
		Ethics:            slices.Clone(c.data.Ethics),
		Authorities:       slices.Clone(c.data.Authorities),
		Civics:            slices.Clone(c.data.Civics),
		Origins:           slices.Clone(c.data.Origins),
		Archetypes:        slices.Clone(c.data.Archetypes),
		SpeciesClasses:    slices.Clone(c.data.SpeciesClasses),
		Traits:            slices.Clone(c.data.Traits),
		LeaderTraits:      slices.Clone(c.data.LeaderTraits),
		PlanetClasses:     slices.Clone(c.data.PlanetClasses),
		GraphicalCultures: slices.Clone(c.data.GraphicalCultures),
	}
}

func (c *Catalog) encode() {
	c.encodeOnce.Do(func() {
		c.encoded, c.encodeErr = json.Marshal(c.data)
		if c.encodeErr != nil {
			return
		}
		sum := sha256.Sum256(c.encoded)
		c.fingerprint = hex.EncodeToString(sum[:])
	})
}

// MarshalJSON encodes the entity lists of c, requirement blocks included.
// The output is stable for equal catalogs.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	c.encode()
	if c.encodeErr != nil {
		return nil, c.encodeErr
	}
	return append([]byte(nil), c.encoded...), nil
}

// Fingerprint is the hex SHA-256 of the JSON form of c. Catalogs holding
// the same entities share a fingerprint. It is empty if c cannot be encoded.
func (c *Catalog) Fingerprint() string {
	c.encode()
	return c.fingerprint
}

// Decode rebuilds a Catalog from the output of MarshalJSON.
func Decode(data []byte) (*Catalog, error) {
	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(d), nil
}
