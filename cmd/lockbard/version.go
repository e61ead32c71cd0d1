package main

import (
	"fmt"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/lockbar-io/lockbar/internal/buildinfo"
)

// Styles for version output (matching CLI styles).
var (
	dStyleBrand   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "30", Dark: "45"})
	dStyleVersion = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"})
	dStyleLabel   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "240"})
	dStyleValue   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "15"})
)

func printVersion() {
	fmt.Printf("  %s %s\n", dStyleBrand.Render("lockbard"), dStyleVersion.Render(buildinfo.Version))
	fmt.Printf("    %s  %s\n", dStyleLabel.Render("Commit"), dStyleValue.Render(buildinfo.CommitHash))
	fmt.Printf("    %s   %s\n", dStyleLabel.Render("Built"), dStyleValue.Render(buildinfo.BuildDate))
	fmt.Printf("    %s %s\n", dStyleLabel.Render("OS/Arch"), dStyleValue.Render(runtime.GOOS+"/"+runtime.GOARCH))
	fmt.Printf("    %s      %s\n", dStyleLabel.Render("Go"), dStyleValue.Render(runtime.Version()))
}
