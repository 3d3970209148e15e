// Package render formats device state for the display surfaces: browser,
// terminal, OLED and console all share these strings.
package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// Icon selects the platform glyph shown next to the orientation label.
type Icon string

const (
	PhoneIcon   Icon = "phone-icon"
	TabletIcon  Icon = "tablet-icon"
	DesktopIcon Icon = "desktop-icon"
)

// IconFor maps a device class onto its icon. Unrecognized classes fall back
// to the phone icon, the same default used when a model name is unknown.
func IconFor(class orientation.DeviceClass) Icon {
	switch class {
	case orientation.Tablet:
		return TabletIcon
	case orientation.Desktop:
		return DesktopIcon
	default:
		return PhoneIcon
	}
}

var title = cases.Title(language.English)

// Humanize turns a lowerCamel enum name into capitalized words:
// "portraitUpsideDown" becomes "Portrait Upside Down".
func Humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return title.String(b.String())
}

// Label is the main orientation line: the capitalized coarse orientation
// followed by the raw detail name, e.g. "Portrait (faceDown)".
func Label(s orientation.State) string {
	return Humanize(s.Coarse.String()) + " (" + s.Detail.String() + ")"
}

// InterfaceLabel describes the UI orientation, e.g. "UI: Landscape Left".
func InterfaceLabel(s orientation.State) string {
	return "UI: " + Humanize(s.Interface.String())
}
