// SPDX-License-Identifier: MIT
//
// Package filter holds the fixed catalog of voice effects and builds the
// processing chain for each one.
package filter

import "fmt"

// IdentityID is the "no effect" entry. It is always first in the catalog.
const IdentityID = "none"

// Family groups effects by sound design.
type Family string

const (
	FamilyNone      Family = "none"
	FamilyTonal     Family = "tonal"
	FamilyRegister  Family = "register"
	FamilyCharacter Family = "character"
	FamilySpatial   Family = "spatial"
)

// Descriptor describes one selectable effect. PlaybackRate scales source
// playback speed; pitch follows rate. 1.0 leaves timing untouched.
type Descriptor struct {
	ID           string
	Name         string
	Family       Family
	PlaybackRate float64
	// Experimental entries have working recipes but are hidden from the
	// default selection.
	Experimental bool
}

// IsIdentity reports whether d applies no processing.
func (d Descriptor) IsIdentity() bool { return d.ID == IdentityID }

// UnknownFilterError reports an id that is not in the catalog. Front-ends
// only offer ids from List, so seeing one is a programming error.
type UnknownFilterError struct {
	ID string
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("filter: unknown filter id %q", e.ID)
}

var catalog = []Descriptor{
	{ID: IdentityID, Name: "Original", Family: FamilyNone, PlaybackRate: 1},
	{ID: "warm", Name: "Warm", Family: FamilyTonal, PlaybackRate: 1},
	{ID: "bright", Name: "Bright", Family: FamilyTonal, PlaybackRate: 1},
	{ID: "deep", Name: "Deep", Family: FamilyRegister, PlaybackRate: 0.8},
	{ID: "chipmunk", Name: "Chipmunk", Family: FamilyRegister, PlaybackRate: 1.5},
	{ID: "radio", Name: "Radio", Family: FamilyCharacter, PlaybackRate: 1},
	{ID: "robot", Name: "Robot", Family: FamilyCharacter, PlaybackRate: 1},
	{ID: "telephone", Name: "Telephone", Family: FamilyCharacter, PlaybackRate: 1},
	{ID: "echo", Name: "Echo", Family: FamilySpatial, PlaybackRate: 1, Experimental: true},
	{ID: "stadium", Name: "Stadium", Family: FamilySpatial, PlaybackRate: 1, Experimental: true},
	{ID: "space", Name: "Space", Family: FamilySpatial, PlaybackRate: 1, Experimental: true},
}

var byID = func() map[string]int {
	m := make(map[string]int, len(catalog))
	for i, d := range catalog {
		m[d.ID] = i
	}
	return m
}()

// List returns every descriptor in catalog order. The identity descriptor
// is always first. Each call returns a fresh slice with the same contents.
func List() []Descriptor {
	return append([]Descriptor(nil), catalog...)
}

// Selectable returns the descriptors a front-end should offer, in catalog
// order. Experimental effects are included only when asked for.
func Selectable(includeExperimental bool) []Descriptor {
	out := make([]Descriptor, 0, len(catalog))
	for _, d := range catalog {
		if d.Experimental && !includeExperimental {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Resolve looks up a descriptor by id.
func Resolve(id string) (Descriptor, error) {
	i, ok := byID[id]
	if !ok {
		return Descriptor{}, &UnknownFilterError{ID: id}
	}
	return catalog[i], nil
}
