package ui

import (
	"reflect"
	"testing"
)

func TestSetTheme(t *testing.T) {
	originalTheme := GetCurrentTheme()
	defer SetCurrentTheme(originalTheme)

	testCases := []struct {
		name      string
		themeName string
		expected  Theme
	}{
		{"dark", "dark", DarkTheme},
		{"light", "light", LightTheme},
		{"none", "none", NoColorTheme},
		{"unknown defaults to dark", "solarized", DarkTheme},
		{"empty defaults to dark", "", DarkTheme},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			SetTheme(tc.themeName)
			if got := GetCurrentTheme(); got != tc.expected {
				t.Errorf("SetTheme(%q): got theme %q, want %q", tc.themeName, got.Name, tc.expected.Name)
			}
		})
	}
}

func TestThemeNames(t *testing.T) {
	want := []string{"dark", "light", "none"}
	if got := ThemeNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("ThemeNames() = %v, want %v", got, want)
	}
}

func TestInitTheme(t *testing.T) {
	originalTheme := GetCurrentTheme()
	defer SetCurrentTheme(originalTheme)

	t.Run("flag disables colors", func(t *testing.T) {
		InitTheme(true)
		if GetCurrentTheme().Name != "none" {
			t.Errorf("got %q, want none", GetCurrentTheme().Name)
		}
	})

	t.Run("NO_COLOR disables colors", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		InitTheme(false)
		if GetCurrentTheme().Name != "none" {
			t.Errorf("got %q, want none", GetCurrentTheme().Name)
		}
	})

	t.Run("empty NO_COLOR still disables colors", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		InitTheme(false)
		if GetCurrentTheme().Name != "none" {
			t.Errorf("got %q, want none", GetCurrentTheme().Name)
		}
	})
}

func TestThemeColors(t *testing.T) {
	for _, theme := range []Theme{DarkTheme, LightTheme} {
		if theme.Primary == "" || theme.Error == "" || theme.Reset != "\033[0m" {
			t.Errorf("theme %q has missing escape codes: %+v", theme.Name, theme)
		}
	}
	if DarkTheme.Primary != "\033[38;5;39m" {
		t.Errorf("unexpected dark primary %q", DarkTheme.Primary)
	}
	if (NoColorTheme != Theme{Name: "none"}) {
		t.Errorf("NoColorTheme must carry no escape codes: %+v", NoColorTheme)
	}
}

func TestPaintAndVerdict(t *testing.T) {
	originalTheme := GetCurrentTheme()
	defer SetCurrentTheme(originalTheme)

	SetCurrentTheme(NoColorTheme)
	if got := Verdict(false, "MISMATCH"); got != "MISMATCH" {
		t.Errorf("plain verdict = %q", got)
	}

	SetCurrentTheme(DarkTheme)
	if got := Verdict(true, "OK"); got != DarkTheme.Success+"OK"+DarkTheme.Reset {
		t.Errorf("ok verdict = %q", got)
	}
	if got := Paint(ColorRed(), "x"); got != DarkTheme.Error+"x"+DarkTheme.Reset {
		t.Errorf("Paint = %q", got)
	}
	if ColorBold() != "\033[1m" || ColorUnderline() != "\033[4m" || ColorCyan() != DarkTheme.Secondary {
		t.Error("color accessors do not follow the active theme")
	}
}
