package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lumenray/go-photon-mapper/pkg/core"
)

// Settings is the render configuration handed to the engine. Zero photon
// count disables the photon pass; zero photon samples forces direct-only
// gathering.
type Settings struct {
	SceneFile       string `yaml:"scene_file"`
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`
	SamplesPerPixel int    `yaml:"samples_per_pixel"`

	CameraPosition  core.Vec3 `yaml:"camera_position"`
	CameraDirection core.Vec3 `yaml:"camera_direction"`
	CameraUp        core.Vec3 `yaml:"camera_up"`
	FieldOfView     float64   `yaml:"fov"`

	PhotonCount    int `yaml:"photon_count"`
	PhotonSamples  int `yaml:"photon_samples"`
	MaxLeafPhotons int `yaml:"max_leaf_photons"`

	UseDirectLighting bool    `yaml:"use_direct_lighting"`
	UseMultisampling  bool    `yaml:"use_multisampling"`
	Gamma             float64 `yaml:"gamma"`
	Seed              int64   `yaml:"seed"`
	Workers           int     `yaml:"workers"`
}

// DefaultSettings returns the baseline configuration
func DefaultSettings() Settings {
	return Settings{
		Width:           700,
		Height:          700,
		SamplesPerPixel: 4,
		CameraPosition:  core.NewVec3(0, 0.5, 0),
		CameraDirection: core.NewVec3(0, 0, 1),
		CameraUp:        core.NewVec3(0, 1, 0),
		FieldOfView:     40,
		PhotonCount:     0,
		PhotonSamples:   0,
		MaxLeafPhotons:  8,
		Gamma:           1.0,
		Seed:            42,
	}
}

// LoadSettings reads a YAML settings file over the defaults
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to open settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings file: %w", err)
	}
	settings.Normalize()
	return settings, nil
}

// Normalize clamps settings into their valid ranges and applies the
// defaulting rules: direct lighting switches on whenever the photon
// gather is disabled.
func (s *Settings) Normalize() {
	if s.SamplesPerPixel < 1 {
		s.SamplesPerPixel = 1
	}
	if s.MaxLeafPhotons < 4 {
		s.MaxLeafPhotons = 4
	}
	if s.Gamma <= 0 {
		s.Gamma = 1.0
	}
	if s.FieldOfView <= 0 {
		s.FieldOfView = 40
	}
	if s.PhotonSamples == 0 {
		s.UseDirectLighting = true
	}
	s.CameraDirection = s.CameraDirection.Normalize()
	s.CameraUp = s.CameraUp.Normalize()
}
