package cli

import apperrors "github.com/agbru/strassen/internal/errors"

var _ apperrors.ColorProvider = CLIColorProvider{}

// CLIColorProvider implements apperrors.ColorProvider with the active theme.
type CLIColorProvider struct{}

// Yellow returns the warning color.
func (CLIColorProvider) Yellow() string { return ColorYellow() }

// Red returns the error color.
func (CLIColorProvider) Red() string { return ColorRed() }

// Reset returns the reset sequence.
func (CLIColorProvider) Reset() string { return ColorReset() }
