// Package ui holds the terminal color themes shared by the CLI, the
// configuration usage text and the error handler.
package ui

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// Theme maps presentation roles to ANSI escape sequences.
type Theme struct {
	Name string
	// Primary highlights sizes, algorithm names and headers.
	Primary string
	// Secondary is used for defaults and less prominent values.
	Secondary string
	// Success marks matching results and completed runs.
	Success string
	// Warning marks fallbacks and skipped sizes.
	Warning string
	// Error marks mismatches and failures.
	Error string
	// Info marks throughput figures.
	Info      string
	Bold      string
	Underline string
	Reset     string
}

func ansi256(code int) string { return fmt.Sprintf("\033[38;5;%dm", code) }

const (
	escBold      = "\033[1m"
	escUnderline = "\033[4m"
	escReset     = "\033[0m"
)

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   ansi256(39),
		Secondary: ansi256(245),
		Success:   ansi256(82),
		Warning:   ansi256(220),
		Error:     ansi256(196),
		Info:      ansi256(141),
		Bold:      escBold,
		Underline: escUnderline,
		Reset:     escReset,
	}

	// LightTheme suits light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   ansi256(27),
		Secondary: ansi256(240),
		Success:   ansi256(28),
		Warning:   ansi256(130),
		Error:     ansi256(124),
		Info:      ansi256(54),
		Bold:      escBold,
		Underline: escUnderline,
		Reset:     escReset,
	}

	// NoColorTheme emits no escape sequences.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// ThemeNames returns the names accepted by SetTheme, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name. Unknown names select DarkTheme.
func SetTheme(name string) {
	t, ok := themes[name]
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// NoColorRequested reports whether the NO_COLOR convention
// (https://no-color.org/) asks for plain output.
func NoColorRequested() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// InitTheme selects the startup theme: NoColorTheme when noColor is set or
// NO_COLOR is present, DarkTheme otherwise.
func InitTheme(noColor bool) {
	if noColor || NoColorRequested() {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}
