package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lumenray/go-photon-mapper/pkg/core"
	"github.com/lumenray/go-photon-mapper/pkg/loaders"
	"github.com/lumenray/go-photon-mapper/pkg/renderer"
	"github.com/lumenray/go-photon-mapper/pkg/scene"
)

func main() {
	settings, output, err := parseFlags()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	logger := core.NewDefaultLogger()
	startTime := time.Now()

	scn, err := loadScene(settings.SceneFile)
	if err != nil {
		fmt.Printf("Error loading scene: %v\n", err)
		os.Exit(1)
	}

	buffer, err := renderer.Render(scn, settings, logger)
	if err != nil {
		fmt.Printf("Error rendering: %v\n", err)
		os.Exit(1)
	}

	if err := writePNG(buffer, settings.Gamma, output); err != nil {
		fmt.Printf("Error saving image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Render completed in %v\n", time.Since(startTime))
	fmt.Printf("Render saved as %s\n", output)
}

// parseFlags builds the settings from an optional YAML config file plus
// command-line overrides
func parseFlags() (scene.Settings, string, error) {
	defaults := scene.DefaultSettings()

	configPath := flag.String("config", "", "YAML settings file; flags override its values")
	sceneFile := flag.String("scene", "", "Scene file (.obj, .gltf or .glb)")
	output := flag.String("out", "render.png", "Output PNG path")
	width := flag.Int("width", defaults.Width, "Image width in pixels")
	height := flag.Int("height", defaults.Height, "Image height in pixels")
	samples := flag.Int("samples", defaults.SamplesPerPixel, "Samples per pixel")
	photonCount := flag.Int("photons", defaults.PhotonCount, "Photon count (0 disables the photon pass)")
	photonSamples := flag.Int("photon-samples", defaults.PhotonSamples, "k for the photon gather (0 forces direct-only)")
	maxLeafPhotons := flag.Int("max-leaf-photons", defaults.MaxLeafPhotons, "Photon k-d tree leaf capacity")
	directLighting := flag.Bool("direct-lighting", defaults.UseDirectLighting, "Sample direct lighting with shadow rays")
	multisampling := flag.Bool("multisampling", defaults.UseMultisampling, "Jitter samples within each pixel")
	gamma := flag.Float64("gamma", defaults.Gamma, "Output gamma")
	seed := flag.Int64("seed", defaults.Seed, "RNG seed")
	workers := flag.Int("workers", 0, "Number of parallel workers (0 = CPU count)")
	position := flag.String("position", "", "Camera position as x,y,z")
	target := flag.String("target", "", "Camera look-at target as x,y,z")
	flag.Parse()

	settings := defaults
	if *configPath != "" {
		loaded, err := scene.LoadSettings(*configPath)
		if err != nil {
			return settings, "", err
		}
		settings = loaded
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			settings.SceneFile = *sceneFile
		case "width":
			settings.Width = *width
		case "height":
			settings.Height = *height
		case "samples":
			settings.SamplesPerPixel = *samples
		case "photons":
			settings.PhotonCount = *photonCount
		case "photon-samples":
			settings.PhotonSamples = *photonSamples
		case "max-leaf-photons":
			settings.MaxLeafPhotons = *maxLeafPhotons
		case "direct-lighting":
			settings.UseDirectLighting = *directLighting
		case "multisampling":
			settings.UseMultisampling = *multisampling
		case "gamma":
			settings.Gamma = *gamma
		case "seed":
			settings.Seed = *seed
		case "workers":
			settings.Workers = *workers
		}
	})

	if *position != "" {
		p, err := parseVec(*position)
		if err != nil {
			return settings, "", fmt.Errorf("invalid -position: %w", err)
		}
		settings.CameraPosition = p
	}
	if *target != "" {
		t, err := parseVec(*target)
		if err != nil {
			return settings, "", fmt.Errorf("invalid -target: %w", err)
		}
		settings.CameraDirection = t.Subtract(settings.CameraPosition).Normalize()
	}

	if settings.SceneFile == "" {
		return settings, "", fmt.Errorf("no scene file given (use -scene or a -config file)")
	}
	settings.Normalize()
	return settings, *output, nil
}

func parseVec(value string) (core.Vec3, error) {
	parts := strings.Split(strings.Trim(value, "()"), ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("expected x,y,z, got %q", value)
	}
	var coords [3]float64
	for i, part := range parts {
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%g", &coords[i]); err != nil {
			return core.Vec3{}, fmt.Errorf("invalid coordinate %q", part)
		}
	}
	return core.NewVec3(coords[0], coords[1], coords[2]), nil
}

func loadScene(path string) (*scene.Scene, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return loaders.LoadGLTFScene(path)
	default:
		return loaders.LoadScene(path)
	}
}

// writePNG tone maps the buffer and saves it as a PNG
func writePNG(buffer *renderer.RenderBuffer, gamma float64, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	pixels := buffer.ToPixelArray(gamma)
	img := image.NewRGBA(image.Rect(0, 0, buffer.Width, buffer.Height))
	for i := 0; i < buffer.Width*buffer.Height; i++ {
		img.Pix[i*4] = pixels[i*3]
		img.Pix[i*4+1] = pixels[i*3+1]
		img.Pix[i*4+2] = pixels[i*3+2]
		img.Pix[i*4+3] = 255
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
