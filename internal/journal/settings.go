package journal

import (
	"fmt"
	"strings"
)

// Theme and FontSize values accepted by the editor.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	FontSmall  = "small"
	FontMedium = "medium"
	FontLarge  = "large"
)

// DefaultDisplayName is shown until the user picks a name.
const DefaultDisplayName = "User"

// Preferences is the per-user settings document.
type Preferences struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Theme         string `json:"theme"`
	FontSize      string `json:"fontSize"`
	AutoZen       bool   `json:"autoZen"`
	Notifications bool   `json:"notifications"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Name:          DefaultDisplayName,
		Theme:         ThemeLight,
		FontSize:      FontMedium,
		Notifications: true,
	}
}

// Normalize trims free-text fields and lower-cases the enumerations. Blank
// enumerations fall back to their defaults.
func (p Preferences) Normalize() Preferences {
	def := DefaultPreferences()
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = def.Name
	}
	p.Email = strings.TrimSpace(p.Email)
	p.Theme = strings.ToLower(strings.TrimSpace(p.Theme))
	if p.Theme == "" {
		p.Theme = def.Theme
	}
	p.FontSize = strings.ToLower(strings.TrimSpace(p.FontSize))
	if p.FontSize == "" {
		p.FontSize = def.FontSize
	}
	return p
}

func (p Preferences) Validate() error {
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("unknown theme %q", p.Theme)
	}
	switch p.FontSize {
	case FontSmall, FontMedium, FontLarge:
	default:
		return fmt.Errorf("unknown font size %q", p.FontSize)
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return fmt.Errorf("invalid email %q", p.Email)
	}
	return nil
}
