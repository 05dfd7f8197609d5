package ui

// ColorReset returns the reset sequence of the active theme.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary color.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the info color.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the secondary color.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold sequence.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline sequence.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// Paint wraps text in color and the active reset sequence. With
// NoColorTheme active it returns text unchanged.
func Paint(color, text string) string {
	if color == "" {
		return text
	}
	return color + text + ColorReset()
}

// Verdict colors a comparison outcome: green when ok, red otherwise.
func Verdict(ok bool, text string) string {
	if ok {
		return Paint(ColorGreen(), text)
	}
	return Paint(ColorRed(), text)
}
