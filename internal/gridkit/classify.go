package gridkit

import "strings"

// Vertex labels assigned from the raw GridKit type field.
const (
	LabelSubstation = "Substation"
	LabelPlant      = "Plant"
	LabelJoint      = "Joint"
	LabelMerge      = "Merge"
	LabelUnknown    = "Unknown"
)

// NamePlaceholder substitutes an absent or undecodable vertex name.
const NamePlaceholder = "unknown"

// ClassifyVertex maps a raw GridKit vertex type onto a node label by
// case-insensitive substring match.
func ClassifyVertex(rawType string) string {
	t := strings.ToLower(strings.TrimSpace(rawType))

	switch {
	case strings.Contains(t, "substation"):
		return LabelSubstation
	case strings.Contains(t, "plant"), strings.Contains(t, "generator"):
		return LabelPlant
	case strings.Contains(t, "joint"):
		return LabelJoint
	case strings.Contains(t, "merge"):
		return LabelMerge
	default:
		return LabelUnknown
	}
}

// SanitizeName reduces a raw vertex name to valid UTF-8, substituting the
// placeholder when nothing usable remains.
func SanitizeName(raw string) string {
	name := strings.TrimSpace(strings.ToValidUTF8(raw, ""))
	if name == "" {
		return NamePlaceholder
	}

	return name
}
