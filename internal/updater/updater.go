// Package updater checks for updates via GitHub Releases and replaces binaries.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/lockbar-io/lockbar/internal/buildinfo"
)

var releasesURL = "https://api.github.com/repos/lockbar-io/lockbar/releases/latest"

// ReleaseInfo contains information about a GitHub release.
type ReleaseInfo struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset represents a downloadable file in a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// UpdateResult contains the result of an update check.
type UpdateResult struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
	Release        *ReleaseInfo
}

func newHTTPClient(timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = timeout
	client.Logger = nil
	return client
}

// CheckForUpdate queries the GitHub Releases API for a newer version.
func CheckForUpdate(ctx context.Context) (*UpdateResult, error) {
	return checkForUpdate(ctx, buildinfo.Version)
}

func checkForUpdate(ctx context.Context, currentVersion string) (*UpdateResult, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", buildinfo.UserAgent("lockbar"))

	resp, err := newHTTPClient(15 * time.Second).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No releases yet
		return &UpdateResult{
			Available:      false,
			CurrentVersion: currentVersion,
		}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	result := &UpdateResult{
		CurrentVersion: currentVersion,
		LatestVersion:  latestVersion,
		ReleaseURL:     release.HTMLURL,
		Release:        &release,
	}

	current, err := ParseSemver(currentVersion)
	if err != nil {
		// "dev" and other unparseable builds are treated as older.
		result.Available = true
		return result, nil
	}

	latest, err := ParseSemver(latestVersion)
	if err != nil {
		return nil, fmt.Errorf("parse latest version %q: %w", latestVersion, err)
	}

	result.Available = current.LessThan(latest)
	return result, nil
}

// CLIAssetName returns the expected asset name for the CLI binary.
func CLIAssetName() string {
	return assetName("lockbar", runtime.GOOS, runtime.GOARCH)
}

// DaemonAssetName returns the expected asset name for the tray app binary.
func DaemonAssetName() string {
	return assetName("lockbard", runtime.GOOS, runtime.GOARCH)
}

func assetName(binary, goos, goarch string) string {
	name := fmt.Sprintf("%s-%s-%s", binary, goos, goarch)
	if goos == "windows" {
		name += ".exe"
	}
	return name
}

// FindAsset finds an asset by name in a release.
func FindAsset(release *ReleaseInfo, name string) *Asset {
	for i := range release.Assets {
		if release.Assets[i].Name == name {
			return &release.Assets[i]
		}
	}
	return nil
}

// DownloadAsset downloads a release asset to a temp file and returns the path.
func DownloadAsset(ctx context.Context, asset *Asset) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, asset.BrowserDownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent("lockbar"))

	resp, err := newHTTPClient(5 * time.Minute).Do(req)
	if err != nil {
		return "", fmt.Errorf("download asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", "lockbar-update-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(tmpFile, resp.Body)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmpFile.Close()

	if asset.Size > 0 && n != asset.Size {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("download truncated: got %d of %d bytes", n, asset.Size)
	}

	// Make executable
	if err := os.Chmod(tmpFile.Name(), 0755); err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("chmod temp file: %w", err)
	}

	return tmpFile.Name(), nil
}

// ReplaceBinary replaces the binary at destPath with the one at newPath,
// restoring the original if the move fails.
func ReplaceBinary(destPath, newPath string) error {
	destPath, err := filepath.EvalSymlinks(destPath)
	if err != nil {
		return fmt.Errorf("resolve symlink: %w", err)
	}

	bakPath := destPath + ".bak"

	// Remove any stale backup
	os.Remove(bakPath)

	if err := os.Rename(destPath, bakPath); err != nil {
		return fmt.Errorf("backup old binary: %w", err)
	}

	if err := os.Rename(newPath, destPath); err != nil {
		_ = os.Rename(bakPath, destPath)
		return fmt.Errorf("install new binary: %w", err)
	}

	os.Remove(bakPath)
	return nil
}
