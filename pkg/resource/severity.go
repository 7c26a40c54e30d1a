package resource

// Severity indicator colours for drug-induced disease rows.
const (
	SeverityColorMild     = "yellow"
	SeverityColorModerate = "orange"
	SeverityColorSevere   = "red"
	SeverityColorOther    = "green"
)

// SeverityColor maps a drug severity label to its indicator colour.
func SeverityColor(severity string) string {
	switch severity {
	case "Mild":
		return SeverityColorMild
	case "Moderate":
		return SeverityColorModerate
	case "Severe":
		return SeverityColorSevere
	default:
		return SeverityColorOther
	}
}
