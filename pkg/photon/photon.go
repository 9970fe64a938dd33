package photon

import (
	"math/rand"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/material"
)

// Photon is one recorded light-carrying sample. Immutable once inserted
// into the photon map's k-d tree.
type Photon struct {
	Colour       core.Vec3
	Pos          core.Vec3
	InDirection  core.Vec3
	OutDirection core.Vec3
	IsDirect     bool
}

// Position implements core.HasPosition for the k-d tree
func (p Photon) Position() core.Vec3 {
	return p.Pos
}

// RecordMode is a selector's verdict for one path vertex
type RecordMode int

const (
	// Record stores a photon at this vertex and continues the path
	Record RecordMode = iota
	// DontRecord skips this vertex but keeps tracing
	DontRecord
	// TerminatePath stops tracing without recording
	TerminatePath
)

// ShouldRecord reports whether a photon is stored at this vertex
func (m RecordMode) ShouldRecord() bool {
	return m == Record
}

// ShouldTerminate reports whether the path stops at this vertex
func (m RecordMode) ShouldTerminate() bool {
	return m == TerminatePath
}

// PhotonSelector decides which path vertices enter the map and how stored
// photons are weighted during the radiance estimate
type PhotonSelector interface {
	RecordMode(surface *material.SurfaceInfo, depth int, random *rand.Rand) RecordMode
	WeightForSample(position core.Vec3, photon *Photon, photonCount int, sampleRadius float64) (float64, bool)
}

// isSpecular samples whether this vertex scatters through a secondary ray
// rather than the diffuse/specular lobes
func isSpecular(surface *material.SurfaceInfo, random *rand.Rand) bool {
	return random.Float64() < surface.SecondaryWeight()
}

// DiffuseSelector records every vertex past the first bounce; the first
// bounce is included when direct lighting is not sampled separately
type DiffuseSelector struct {
	IncludeFirstBounce bool
}

// NewDiffuseSelector creates a diffuse-map selector
func NewDiffuseSelector(includeFirstBounce bool) *DiffuseSelector {
	return &DiffuseSelector{IncludeFirstBounce: includeFirstBounce}
}

func (s *DiffuseSelector) RecordMode(surface *material.SurfaceInfo, depth int, random *rand.Rand) RecordMode {
	if depth > 1 || s.IncludeFirstBounce {
		return Record
	}
	return DontRecord
}

func (s *DiffuseSelector) WeightForSample(position core.Vec3, photon *Photon, photonCount int, sampleRadius float64) (float64, bool) {
	return 1.0, true
}

// CausticSelector ends a path at its first bounce unless that surface is
// judged specular (sampled against its secondary weight); every later vertex
// of a surviving path is recorded, whatever its surface
type CausticSelector struct{}

// NewCausticSelector creates a caustic-map selector
func NewCausticSelector() *CausticSelector {
	return &CausticSelector{}
}

func (s *CausticSelector) RecordMode(surface *material.SurfaceInfo, depth int, random *rand.Rand) RecordMode {
	if depth == 1 {
		if isSpecular(surface, random) {
			return DontRecord
		}
		return TerminatePath
	}
	return Record
}

func (s *CausticSelector) WeightForSample(position core.Vec3, photon *Photon, photonCount int, sampleRadius float64) (float64, bool) {
	return 1.0, true
}
