package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"anim-studio/internal/domain"
)

const pipListTimeout = 30 * time.Second

var pythonPackageCatalog = []domain.PythonPackageOption{
	{
		ID:          "manim",
		Name:        "Manim Community",
		PipName:     "manim",
		Description: "The animation engine every render runs through.",
		Required:    true,
	},
	{
		ID:          "numpy",
		Name:        "NumPy",
		PipName:     "numpy",
		Description: "Array math used by coordinate and transform helpers.",
		Required:    true,
	},
	{
		ID:          "scipy",
		Name:        "SciPy",
		PipName:     "scipy",
		Description: "Scientific routines for curve and signal scenes.",
	},
	{
		ID:          "sympy",
		Name:        "SymPy",
		PipName:     "sympy",
		Description: "Symbolic math for equation-driven animations.",
	},
	{
		ID:          "pillow",
		Name:        "Pillow",
		PipName:     "pillow",
		Description: "Image loading behind ImageMobject.",
	},
	{
		ID:          "pycairo",
		Name:        "Pycairo",
		PipName:     "pycairo",
		Description: "Vector rasterizer used by the Cairo renderer.",
	},
	{
		ID:          "pydub",
		Name:        "Pydub",
		PipName:     "pydub",
		Description: "Audio segments for scenes with sound.",
	},
	{
		ID:          "opencv",
		Name:        "OpenCV",
		PipName:     "opencv-python",
		Description: "Frame post-processing and video input helpers.",
	},
}

// GetPythonPackages returns the curated package catalog with install status
// resolved against the active interpreter.
func (a *App) GetPythonPackages() []domain.PythonPackageOption {
	packages := make([]domain.PythonPackageOption, len(pythonPackageCatalog))
	copy(packages, pythonPackageCatalog)

	installed, err := listInstalledPythonPackages()
	if err != nil {
		return packages
	}
	markInstalledPackages(packages, installed)
	return packages
}

// InstallPythonPackage installs one catalog package with pip and returns the
// refreshed catalog.
func (a *App) InstallPythonPackage(packageID string) ([]domain.PythonPackageOption, error) {
	id := strings.TrimSpace(packageID)
	if id == "" {
		return nil, fmt.Errorf("package id is required")
	}

	pkg, found := getPythonPackageByID(id)
	if !found {
		return nil, fmt.Errorf("unknown package id: %s", id)
	}

	python, err := findPythonInterpreter()
	if err != nil {
		return nil, fmt.Errorf("install %s: %w", pkg.PipName, err)
	}

	installErr := runCommand(python, "-m", "pip", "install", "--upgrade", pkg.PipName)
	if installErr != nil {
		if userErr := runCommand(python, "-m", "pip", "install", "--user", "--upgrade", pkg.PipName); userErr != nil {
			return nil, fmt.Errorf("install %s via pip: %v | %w", pkg.PipName, installErr, userErr)
		}
	}

	if a.Store != nil {
		if settings, loadErr := a.Store.Load(); loadErr == nil {
			a.refreshDiagnosticsFromSettings(normalizeSettings(settings))
		}
	}
	return a.GetPythonPackages(), nil
}

func getPythonPackageByID(id string) (domain.PythonPackageOption, bool) {
	for _, pkg := range pythonPackageCatalog {
		if pkg.ID == id {
			return pkg, true
		}
	}
	return domain.PythonPackageOption{}, false
}

type installedPythonPackage struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func listInstalledPythonPackages() (map[string]string, error) {
	python, err := findPythonInterpreter()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pipListTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, python, "-m", "pip", "list", "--format=json").Output()
	if err != nil {
		return nil, fmt.Errorf("list installed packages: %w", err)
	}

	var entries []installedPythonPackage
	if err := json.Unmarshal(output, &entries); err != nil {
		return nil, fmt.Errorf("decode pip package list: %w", err)
	}

	installed := make(map[string]string, len(entries))
	for _, entry := range entries {
		installed[normalizePipName(entry.Name)] = entry.Version
	}
	return installed, nil
}

// normalizePipName folds a distribution name to its canonical pip form so
// Opencv-Python and opencv_python compare equal.
func normalizePipName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	lowered = strings.ReplaceAll(lowered, "_", "-")
	lowered = strings.ReplaceAll(lowered, ".", "-")
	return lowered
}

func markInstalledPackages(packages []domain.PythonPackageOption, installed map[string]string) {
	for i := range packages {
		version, ok := installed[normalizePipName(packages[i].PipName)]
		if !ok {
			continue
		}
		packages[i].Installed = true
		packages[i].Version = version
	}
}
