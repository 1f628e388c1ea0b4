package model

// Quality is the render quality tier.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

var ValidQualities = []Quality{QualityLow, QualityMedium, QualityHigh}

// ParseQuality validates a requested quality tier, falling back to the
// configured default for unknown or empty values.
func ParseQuality(s string, def Quality) Quality {
	switch Quality(s) {
	case QualityLow, QualityMedium, QualityHigh:
		return Quality(s)
	}
	return def
}
