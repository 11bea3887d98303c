package settings

import "strconv"

// ThemeKey is where the light mode flag is kept
const ThemeKey = "isLightMode"

// Theme is the color mode of the interface
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// LoadTheme reads the stored mode. Missing or unreadable values mean dark.
func LoadTheme(repo Repository) (Theme, error) {
	v, ok, err := repo.Get(ThemeKey)
	if err != nil {
		return Dark, err
	}
	if !ok {
		return Dark, nil
	}
	light, err := strconv.ParseBool(v)
	if err != nil || !light {
		return Dark, nil
	}
	return Light, nil
}

// SetTheme stores the mode
func SetTheme(repo Repository, theme Theme) error {
	return repo.Set(ThemeKey, strconv.FormatBool(theme == Light))
}

// ToggleTheme flips the stored mode and returns the new one
func ToggleTheme(repo Repository) (Theme, error) {
	current, err := LoadTheme(repo)
	if err != nil {
		return current, err
	}
	next := Light
	if current == Light {
		next = Dark
	}
	if err := SetTheme(repo, next); err != nil {
		return current, err
	}
	return next, nil
}
