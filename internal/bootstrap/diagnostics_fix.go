package bootstrap

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"time"

	"anim-studio/internal/config"
	"anim-studio/internal/domain"
)

const (
	installCommandTimeout = 45 * time.Minute
	downloadToolTimeout   = 30 * time.Minute

	ffmpegWindowsReleaseURL = "https://api.github.com/repos/BtbN/FFmpeg-Builds/releases/latest"
)

type installOption struct {
	manager  string
	commands [][]string
}

// InstallOrFixDiagnostic applies an OS-specific remediation for one failed diagnostic item.
func (a *App) InstallOrFixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	settingsChanged := false
	var fixErr error

	switch id {
	case "tool_python":
		fixErr = installPythonForCurrentOS()
	case "tool_manim":
		fixErr = installManimForCurrentOS()
	case "tool_ffmpeg":
		fixErr = installFFmpegForCurrentOS()
	case "tool_latex":
		fixErr = installLatexForCurrentOS()
	case "assets_dir":
		fixErr = createDirectory(a.assetsDir)
	case "save_location":
		settings, settingsChanged, fixErr = installOrFixSaveLocation(settings)
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	if settingsChanged {
		if saveErr := a.Store.Save(settings); saveErr != nil {
			report := a.refreshDiagnosticsFromSettings(settings)
			return report, fmt.Errorf("save settings after fix: %w", saveErr)
		}
	}

	report := a.refreshDiagnosticsFromSettings(settings)
	if fixErr != nil {
		return report, fixErr
	}
	return report, nil
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	// The checker probes the filesystem and external tools, so it runs
	// before the lock is taken.
	var report domain.DiagnosticReport
	if a.checker != nil {
		report = a.checker.Run(settings, a.assetsDir)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.checker != nil {
		a.Diagnostics = report
	}
	return a.Diagnostics
}

func ensureLocalBinOnPATH(homeDir string) error {
	binDir := localBinDir(homeDir)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}

	current := os.Getenv("PATH")
	entries := filepath.SplitList(current)
	for _, entry := range entries {
		if filepath.Clean(entry) == filepath.Clean(binDir) {
			return nil
		}
	}

	if current == "" {
		return os.Setenv("PATH", binDir)
	}
	return os.Setenv("PATH", binDir+string(os.PathListSeparator)+current)
}

func localBinDir(homeDir string) string {
	return filepath.Join(homeDir, appDirName, "bin")
}

func installPythonForCurrentOS() error {
	options := []installOption{}

	switch goruntime.GOOS {
	case "windows":
		options = []installOption{
			{
				manager: "winget",
				commands: [][]string{
					{"winget", "install", "--id", "Python.Python.3.12", "--exact", "--accept-source-agreements", "--accept-package-agreements"},
				},
			},
			{
				manager: "choco",
				commands: [][]string{
					{"choco", "install", "python", "-y"},
				},
			},
			{
				manager: "scoop",
				commands: [][]string{
					{"scoop", "install", "python"},
				},
			},
		}
	case "darwin":
		options = []installOption{
			{
				manager: "brew",
				commands: [][]string{
					{"brew", "install", "python"},
				},
			},
		}
	default:
		options = []installOption{
			{
				manager: "apt-get",
				commands: [][]string{
					{"apt-get", "update"},
					{"apt-get", "install", "-y", "python3", "python3-pip"},
				},
			},
			{
				manager: "dnf",
				commands: [][]string{
					{"dnf", "install", "-y", "python3", "python3-pip"},
				},
			},
			{
				manager: "pacman",
				commands: [][]string{
					{"pacman", "-Sy", "--noconfirm", "python", "python-pip"},
				},
			},
			{
				manager: "zypper",
				commands: [][]string{
					{"zypper", "install", "-y", "python3", "python3-pip"},
				},
			},
			{
				manager: "brew",
				commands: [][]string{
					{"brew", "install", "python"},
				},
			},
		}
	}

	if err := runFirstSuccessfulInstall(options); err != nil {
		return fmt.Errorf("install python: %w", err)
	}
	if err := requireAnyToolOnPath("python3", "python"); err != nil {
		return fmt.Errorf("verify python on PATH: %w", err)
	}
	return nil
}

func installManimForCurrentOS() error {
	if err := requireToolsOnPath("manim"); err == nil {
		return nil
	}

	python, err := findPythonInterpreter()
	if err != nil {
		return fmt.Errorf("install manim: %w", err)
	}

	installErr := runCommand(python, "-m", "pip", "install", "--upgrade", "manim")
	if installErr != nil {
		// Distribution-managed interpreters reject system-wide pip installs.
		if userErr := runCommand(python, "-m", "pip", "install", "--user", "--upgrade", "manim"); userErr != nil {
			return fmt.Errorf("install manim via pip: %v | %w", installErr, userErr)
		}
	}

	if err := requireToolsOnPath("manim"); err == nil {
		return nil
	}

	// pip can place the entry point outside PATH; a shim keeps the module
	// callable by name.
	if err := createManimShim(python); err != nil {
		return fmt.Errorf("create manim command shim: %w", err)
	}
	if err := requireToolsOnPath("manim"); err != nil {
		return fmt.Errorf("verify manim on PATH: %w", err)
	}
	return nil
}

func findPythonInterpreter() (string, error) {
	for _, candidate := range []string{"python3", "python"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no python interpreter found in PATH")
}

func installFFmpegForCurrentOS() error {
	if err := requireToolsOnPath("ffmpeg"); err == nil {
		return nil
	}

	options := []installOption{}

	switch goruntime.GOOS {
	case "windows":
		options = []installOption{
			{
				manager: "winget",
				commands: [][]string{
					{"winget", "install", "--id", "Gyan.FFmpeg", "--exact", "--accept-source-agreements", "--accept-package-agreements"},
				},
			},
			{
				manager: "choco",
				commands: [][]string{
					{"choco", "install", "ffmpeg", "-y"},
				},
			},
			{
				manager: "scoop",
				commands: [][]string{
					{"scoop", "install", "ffmpeg"},
				},
			},
		}
	case "darwin":
		options = []installOption{
			{
				manager: "brew",
				commands: [][]string{
					{"brew", "install", "ffmpeg"},
				},
			},
		}
	default:
		options = []installOption{
			{
				manager: "apt-get",
				commands: [][]string{
					{"apt-get", "update"},
					{"apt-get", "install", "-y", "ffmpeg"},
				},
			},
			{
				manager: "dnf",
				commands: [][]string{
					{"dnf", "install", "-y", "ffmpeg"},
				},
			},
			{
				manager: "pacman",
				commands: [][]string{
					{"pacman", "-Sy", "--noconfirm", "ffmpeg"},
				},
			},
			{
				manager: "zypper",
				commands: [][]string{
					{"zypper", "install", "-y", "ffmpeg"},
				},
			},
			{
				manager: "brew",
				commands: [][]string{
					{"brew", "install", "ffmpeg"},
				},
			},
		}
	}

	installErr := runFirstSuccessfulInstall(options)
	if installErr == nil {
		if err := requireToolsOnPath("ffmpeg"); err == nil {
			return nil
		}
	}

	if goruntime.GOOS == "windows" {
		if err := installFFmpegWindowsFromGithubRelease(); err == nil {
			if err := requireToolsOnPath("ffmpeg"); err == nil {
				return nil
			}
		} else if installErr != nil {
			installErr = fmt.Errorf("%v | release fallback: %w", installErr, err)
		} else {
			installErr = fmt.Errorf("release fallback: %w", err)
		}
	}

	if installErr != nil {
		return fmt.Errorf("install ffmpeg: %w", installErr)
	}
	if err := requireToolsOnPath("ffmpeg"); err != nil {
		return fmt.Errorf("verify ffmpeg on PATH: %w", err)
	}
	return nil
}

func installLatexForCurrentOS() error {
	if err := requireAnyToolOnPath("pdflatex", "xelatex", "lualatex", "latex"); err == nil {
		return nil
	}

	options := []installOption{}

	switch goruntime.GOOS {
	case "windows":
		options = []installOption{
			{
				manager: "winget",
				commands: [][]string{
					{"winget", "install", "--id", "MiKTeX.MiKTeX", "--exact", "--accept-source-agreements", "--accept-package-agreements"},
				},
			},
			{
				manager: "choco",
				commands: [][]string{
					{"choco", "install", "miktex", "-y"},
				},
			},
		}
	case "darwin":
		options = []installOption{
			{
				manager: "brew",
				commands: [][]string{
					{"brew", "install", "--cask", "basictex"},
				},
			},
			{
				manager: "brew",
				commands: [][]string{
					{"brew", "install", "--cask", "mactex-no-gui"},
				},
			},
		}
	default:
		options = []installOption{
			{
				manager: "apt-get",
				commands: [][]string{
					{"apt-get", "update"},
					{"apt-get", "install", "-y", "texlive", "texlive-latex-extra"},
				},
			},
			{
				manager: "dnf",
				commands: [][]string{
					{"dnf", "install", "-y", "texlive-scheme-basic"},
				},
			},
			{
				manager: "pacman",
				commands: [][]string{
					{"pacman", "-Sy", "--noconfirm", "texlive-basic", "texlive-latexextra"},
				},
			},
			{
				manager: "zypper",
				commands: [][]string{
					{"zypper", "install", "-y", "texlive"},
				},
			},
		}
	}

	if err := runFirstSuccessfulInstall(options); err != nil {
		return fmt.Errorf("install latex: %w", err)
	}
	if err := requireAnyToolOnPath("pdflatex", "xelatex", "lualatex", "latex"); err != nil {
		return fmt.Errorf("verify latex on PATH: %w", err)
	}
	return nil
}

func runFirstSuccessfulInstall(options []installOption) error {
	if len(options) == 0 {
		return fmt.Errorf("no install commands configured for OS %s", goruntime.GOOS)
	}

	errorsByManager := make([]string, 0, len(options))
	atLeastOneManager := false

	for _, option := range options {
		if !commandAvailable(option.manager) {
			continue
		}
		atLeastOneManager = true
		if err := runInstallCommands(option.commands); err == nil {
			return nil
		} else {
			errorsByManager = append(errorsByManager, fmt.Sprintf("%s: %v", option.manager, err))
		}
	}

	if !atLeastOneManager {
		return fmt.Errorf("no supported package manager found for %s", goruntime.GOOS)
	}
	return errors.New(strings.Join(errorsByManager, " | "))
}

func runInstallCommands(commands [][]string) error {
	for _, command := range commands {
		if err := runCommandWithPossibleElevation(command); err != nil {
			return err
		}
	}
	return nil
}

func runCommandWithPossibleElevation(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}

	candidates := [][]string{command}
	if goruntime.GOOS == "linux" && requiresElevation(command[0]) {
		if commandAvailable("pkexec") {
			candidates = append(candidates, append([]string{"pkexec"}, command...))
		}
		if commandAvailable("sudo") {
			candidates = append(candidates, append([]string{"sudo", "-n"}, command...))
		}
	}

	attemptErrors := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if err := runCommand(candidate[0], candidate[1:]...); err == nil {
			return nil
		} else {
			attemptErrors = append(attemptErrors, err.Error())
		}
	}

	return errors.New(strings.Join(attemptErrors, " | "))
}

func runCommand(name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), installCommandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s", formatCommand(name, args), installCommandTimeout)
	}

	trimmed := strings.TrimSpace(string(output))
	if len(trimmed) > 500 {
		trimmed = trimmed[:500] + "..."
	}
	if trimmed == "" {
		return fmt.Errorf("%s failed: %w", formatCommand(name, args), err)
	}
	return fmt.Errorf("%s failed: %w (%s)", formatCommand(name, args), err, trimmed)
}

func formatCommand(name string, args []string) string {
	parts := append([]string{name}, args...)
	return strings.Join(parts, " ")
}

func requiresElevation(manager string) bool {
	switch manager {
	case "apt-get", "dnf", "pacman", "zypper":
		return true
	default:
		return false
	}
}

func commandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func requireToolsOnPath(names ...string) error {
	missing := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tools on PATH: %s", strings.Join(missing, ", "))
	}
	return nil
}

func requireAnyToolOnPath(names ...string) error {
	for _, name := range names {
		if _, err := exec.LookPath(name); err == nil {
			return nil
		}
	}
	return fmt.Errorf("none of the expected tools found on PATH: %s", strings.Join(names, ", "))
}

func createManimShim(pythonPath string) error {
	if strings.TrimSpace(pythonPath) == "" {
		return fmt.Errorf("python interpreter path is empty")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve user home: %w", err)
	}

	if err := ensureLocalBinOnPATH(homeDir); err != nil {
		return err
	}

	binDir := localBinDir(homeDir)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("create local bin directory: %w", err)
	}

	if goruntime.GOOS == "windows" {
		shimPath := filepath.Join(binDir, "manim.cmd")
		content := fmt.Sprintf("@echo off\r\n\"%s\" -m manim %%*\r\n", pythonPath)
		if err := os.WriteFile(shimPath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write manim shim file: %w", err)
		}
		return nil
	}

	shimPath := filepath.Join(binDir, "manim")
	escaped := strings.ReplaceAll(pythonPath, "\"", "\\\"")
	content := fmt.Sprintf("#!/usr/bin/env sh\nexec \"%s\" -m manim \"$@\"\n", escaped)
	if err := os.WriteFile(shimPath, []byte(content), 0o755); err != nil {
		return fmt.Errorf("write manim shim script: %w", err)
	}
	return nil
}

func writeExecutableShim(commandName, sourcePath string) error {
	if strings.TrimSpace(sourcePath) == "" {
		return fmt.Errorf("source executable path is empty")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve user home: %w", err)
	}

	if err := ensureLocalBinOnPATH(homeDir); err != nil {
		return err
	}

	binDir := localBinDir(homeDir)
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("create local bin directory: %w", err)
	}

	if goruntime.GOOS == "windows" {
		shimPath := filepath.Join(binDir, commandName+".cmd")
		content := fmt.Sprintf("@echo off\r\n\"%s\" %%*\r\n", sourcePath)
		if err := os.WriteFile(shimPath, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write %s shim file: %w", commandName, err)
		}
		return nil
	}

	shimPath := filepath.Join(binDir, commandName)
	escaped := strings.ReplaceAll(sourcePath, "\"", "\\\"")
	content := fmt.Sprintf("#!/usr/bin/env sh\nexec \"%s\" \"$@\"\n", escaped)
	if err := os.WriteFile(shimPath, []byte(content), 0o755); err != nil {
		return fmt.Errorf("write %s shim script: %w", commandName, err)
	}
	return nil
}

type githubRelease struct {
	TagName string `json:"tag_name"`
	Assets  []struct {
		Name string `json:"name"`
		URL  string `json:"browser_download_url"`
	} `json:"assets"`
}

func installFFmpegWindowsFromGithubRelease() error {
	release, err := fetchGithubRelease(ffmpegWindowsReleaseURL)
	if err != nil {
		return fmt.Errorf("fetch latest ffmpeg release metadata: %w", err)
	}

	assetURL, assetName, err := selectFFmpegWindowsAsset(release)
	if err != nil {
		return err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolve user home: %w", err)
	}

	installDir := filepath.Join(homeDir, appDirName, "tools", "ffmpeg", release.TagName)
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return fmt.Errorf("create ffmpeg install directory: %w", err)
	}

	zipPath := filepath.Join(installDir, assetName)
	if err := downloadURLToFile(zipPath, assetURL, downloadToolTimeout); err != nil {
		return fmt.Errorf("download release asset: %w", err)
	}

	executablePath, err := extractExecutableFromZip(zipPath, installDir, "ffmpeg.exe")
	if err != nil {
		return fmt.Errorf("extract ffmpeg release asset: %w", err)
	}

	return writeExecutableShim("ffmpeg", executablePath)
}

func fetchGithubRelease(url string) (githubRelease, error) {
	ctx, cancel := context.WithTimeout(context.Background(), downloadToolTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return githubRelease{}, fmt.Errorf("build release metadata request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "anim-studio")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return githubRelease{}, fmt.Errorf("request release metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return githubRelease{}, fmt.Errorf("release metadata request returned %s", resp.Status)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return githubRelease{}, fmt.Errorf("decode release metadata: %w", err)
	}
	if strings.TrimSpace(release.TagName) == "" {
		return githubRelease{}, fmt.Errorf("release metadata did not include a tag name")
	}
	return release, nil
}

func selectFFmpegWindowsAsset(release githubRelease) (url string, name string, err error) {
	if len(release.Assets) == 0 {
		return "", "", fmt.Errorf("release %s has no assets", release.TagName)
	}

	selectByPredicate := func(predicate func(string) bool) (string, string, bool) {
		for _, asset := range release.Assets {
			assetName := strings.ToLower(strings.TrimSpace(asset.Name))
			if !predicate(assetName) {
				continue
			}
			if strings.TrimSpace(asset.URL) == "" {
				continue
			}
			return asset.URL, asset.Name, true
		}
		return "", "", false
	}

	if url, name, ok := selectByPredicate(func(assetName string) bool {
		return strings.HasSuffix(assetName, "win64-gpl.zip")
	}); ok {
		return url, name, nil
	}

	if url, name, ok := selectByPredicate(func(assetName string) bool {
		return strings.HasSuffix(assetName, ".zip") &&
			(strings.Contains(assetName, "win") || strings.Contains(assetName, "windows")) &&
			strings.Contains(assetName, "64")
	}); ok {
		return url, name, nil
	}

	return "", "", fmt.Errorf("release %s does not contain a supported Windows x64 zip asset", release.TagName)
}

func downloadURLToFile(destinationPath string, sourceURL string, timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(destinationPath), 0o755); err != nil {
		return fmt.Errorf("prepare destination directory: %w", err)
	}

	tmpPath := destinationPath + ".download"
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale temp file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "anim-studio")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}

	_, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write destination file: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close destination file: %w", closeErr)
	}

	if err := os.Remove(destinationPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("remove old destination file: %w", err)
	}
	if err := os.Rename(tmpPath, destinationPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("move downloaded file into place: %w", err)
	}

	return nil
}

func extractExecutableFromZip(zipPath string, extractDir string, executableName string) (string, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	var executablePath string

	for _, file := range reader.File {
		if file == nil {
			continue
		}
		cleanName := filepath.Clean(file.Name)
		if cleanName == "." || cleanName == "" {
			continue
		}
		targetPath := filepath.Join(extractDir, cleanName)
		if !isWithinBaseDir(extractDir, targetPath) {
			return "", fmt.Errorf("zip contains invalid path: %s", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return "", err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return "", err
		}

		src, err := file.Open()
		if err != nil {
			return "", err
		}

		dst, err := os.OpenFile(targetPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, file.Mode())
		if err != nil {
			_ = src.Close()
			return "", err
		}

		_, copyErr := io.Copy(dst, src)
		srcCloseErr := src.Close()
		dstCloseErr := dst.Close()
		if copyErr != nil {
			return "", copyErr
		}
		if srcCloseErr != nil {
			return "", srcCloseErr
		}
		if dstCloseErr != nil {
			return "", dstCloseErr
		}

		if strings.EqualFold(filepath.Base(targetPath), executableName) {
			executablePath = targetPath
		}
	}

	if strings.TrimSpace(executablePath) == "" {
		return "", fmt.Errorf("extracted archive does not contain %s", executableName)
	}
	return executablePath, nil
}

func isWithinBaseDir(baseDir string, targetPath string) bool {
	baseClean := filepath.Clean(baseDir)
	targetClean := filepath.Clean(targetPath)
	relative, err := filepath.Rel(baseClean, targetClean)
	if err != nil {
		return false
	}
	return relative == "." || (!strings.HasPrefix(relative, "..") && relative != "")
}

func createDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("directory path is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}

func installOrFixSaveLocation(settings domain.Settings) (domain.Settings, bool, error) {
	saveDir := strings.TrimSpace(settings.DefaultSaveLocation)
	changed := false
	if saveDir == "" {
		saveDir = config.DefaultSettings().DefaultSaveLocation
		settings.DefaultSaveLocation = saveDir
		changed = true
	}

	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return settings, changed, fmt.Errorf("create save directory %s: %w", saveDir, err)
	}

	return settings, changed, nil
}
