package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Mods is the osu! gameplay modifier bitmask.
type Mods uint32

const (
	ModNoFail      Mods = 1 << 0
	ModEasy        Mods = 1 << 1
	ModTouchDevice Mods = 1 << 2
	ModHidden      Mods = 1 << 3
	ModHardRock    Mods = 1 << 4
	ModSuddenDeath Mods = 1 << 5
	ModDoubleTime  Mods = 1 << 6
	ModRelax       Mods = 1 << 7
	ModHalfTime    Mods = 1 << 8
	ModNightcore   Mods = 1 << 9 // always sent together with DoubleTime
	ModFlashlight  Mods = 1 << 10
	ModAutoplay    Mods = 1 << 11
	ModSpunOut     Mods = 1 << 12
	ModAutopilot   Mods = 1 << 13
	ModPerfect     Mods = 1 << 14 // always sent together with SuddenDeath
	ModKey4        Mods = 1 << 15
	ModKey5        Mods = 1 << 16
	ModKey6        Mods = 1 << 17
	ModKey7        Mods = 1 << 18
	ModKey8        Mods = 1 << 19
	ModFadeIn      Mods = 1 << 20
	ModRandom      Mods = 1 << 21
	ModCinema      Mods = 1 << 22
	ModTarget      Mods = 1 << 23
	ModKey9        Mods = 1 << 24
	ModKeyCoop     Mods = 1 << 25
	ModKey1        Mods = 1 << 26
	ModKey3        Mods = 1 << 27
	ModKey2        Mods = 1 << 28
	ModScoreV2     Mods = 1 << 29
	ModMirror      Mods = 1 << 30
)

// ForbiddenMods make a map easier to hold combo on; scores using any of them
// never count towards an FC.
const ForbiddenMods = ModEasy | ModHalfTime | ModSpunOut | ModTouchDevice

// MaxComboMods end the play on any combo break, so a pass implies max combo.
const MaxComboMods = ModSuddenDeath | ModPerfect

var ErrUnknownMod = errors.New("unknown mod")

// display order follows the in-game mod select screen
var modAcronyms = []struct {
	mod     Mods
	acronym string
}{
	{ModEasy, "EZ"},
	{ModNoFail, "NF"},
	{ModHalfTime, "HT"},
	{ModHardRock, "HR"},
	{ModSuddenDeath, "SD"},
	{ModPerfect, "PF"},
	{ModDoubleTime, "DT"},
	{ModNightcore, "NC"},
	{ModHidden, "HD"},
	{ModFadeIn, "FI"},
	{ModFlashlight, "FL"},
	{ModRelax, "RX"},
	{ModAutopilot, "AP"},
	{ModSpunOut, "SO"},
	{ModAutoplay, "AT"},
	{ModCinema, "CN"},
	{ModTouchDevice, "TD"},
	{ModTarget, "TP"},
	{ModRandom, "RD"},
	{ModMirror, "MR"},
	{ModScoreV2, "V2"},
	{ModKeyCoop, "CP"},
	{ModKey1, "1K"},
	{ModKey2, "2K"},
	{ModKey3, "3K"},
	{ModKey4, "4K"},
	{ModKey5, "5K"},
	{ModKey6, "6K"},
	{ModKey7, "7K"},
	{ModKey8, "8K"},
	{ModKey9, "9K"},
}

func (m Mods) Has(other Mods) bool {
	return m&other != 0
}

// String renders the canonical acronym string, e.g. "HDNC". NC hides DT and
// PF hides SD; no mods renders as "NM".
func (m Mods) String() string {
	if m == 0 {
		return "NM"
	}

	var sb strings.Builder
	for _, ma := range modAcronyms {
		if m&ma.mod == 0 {
			continue
		}
		if ma.mod == ModDoubleTime && m.Has(ModNightcore) {
			continue
		}
		if ma.mod == ModSuddenDeath && m.Has(ModPerfect) {
			continue
		}
		sb.WriteString(ma.acronym)
	}
	return sb.String()
}

// ParseMods decodes an acronym string such as "HDDT", "HD,DT" or "+HD DT".
func ParseMods(s string) (Mods, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "+")
	s = strings.NewReplacer(",", "", " ", "", "|", "").Replace(s)
	if s == "" || s == "NM" || s == "NOMOD" {
		return 0, nil
	}
	if len(s)%2 != 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMod, s)
	}

	var m Mods
	for i := 0; i < len(s); i += 2 {
		acronym := s[i : i+2]
		mod, ok := lookupAcronym(acronym)
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownMod, acronym)
		}
		m |= mod
	}

	if m.Has(ModNightcore) {
		m |= ModDoubleTime
	}
	if m.Has(ModPerfect) {
		m |= ModSuddenDeath
	}
	return m, nil
}

func lookupAcronym(acronym string) (Mods, bool) {
	for _, ma := range modAcronyms {
		if ma.acronym == acronym {
			return ma.mod, true
		}
	}
	return 0, false
}
