package theme

import (
	"fmt"
	"strings"
)

// Mode selects light or dark rendering of a theme.
type Mode int

const (
	ModeLight Mode = iota
	ModeDark
)

func (m Mode) String() string {
	switch m {
	case ModeLight:
		return "light"
	case ModeDark:
		return "dark"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses mode name, case insensitive.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light", "":
		return ModeLight, nil
	case "dark":
		return ModeDark, nil
	}
	return ModeLight, fmt.Errorf("unknown theme mode %q", s)
}
