package aqi

// Level is the severity classification of an AQI index.
type Level string

const (
	LevelGood               Level = "GOOD"
	LevelModerate           Level = "MODERATE"
	LevelUnhealthySensitive Level = "UNHEALTHY_SENSITIVE"
	LevelUnhealthy          Level = "UNHEALTHY"
	LevelVeryUnhealthy      Level = "VERY_UNHEALTHY"
	LevelHazardous          Level = "HAZARDOUS"

	// LevelUnknown is returned for negative or missing indices.
	// It is distinct from LevelGood: an unreadable index is never
	// presented as clean air.
	LevelUnknown Level = "UNKNOWN"
)

// Band is a severity band with its inclusive upper bound.
// UpperBound is -1 for the open-ended Hazardous band and for Unknown.
type Band struct {
	Level       Level
	Label       string
	Description string
	UpperBound  int
}

// bands are ordered ascending; selection is first match with an
// inclusive upper bound, so a boundary value belongs to the lower
// (safer) band.
var bands = []Band{
	{
		Level:       LevelGood,
		Label:       "Good",
		Description: "Air quality is satisfactory, and air pollution poses little or no risk.",
		UpperBound:  50,
	},
	{
		Level:       LevelModerate,
		Label:       "Moderate",
		Description: "Air quality is acceptable. However, there may be a risk for some people.",
		UpperBound:  100,
	},
	{
		Level:       LevelUnhealthySensitive,
		Label:       "Unhealthy for Sensitive",
		Description: "Members of sensitive groups may experience health effects.",
		UpperBound:  150,
	},
	{
		Level:       LevelUnhealthy,
		Label:       "Unhealthy",
		Description: "Some members of the general public may experience health effects.",
		UpperBound:  200,
	},
	{
		Level:       LevelVeryUnhealthy,
		Label:       "Very Unhealthy",
		Description: "Health alert: The risk of health effects is increased for everyone.",
		UpperBound:  300,
	},
	{
		Level:       LevelHazardous,
		Label:       "Hazardous",
		Description: "Health warning of emergency conditions. Everyone is more likely to be affected.",
		UpperBound:  -1,
	},
}

var unknownBand = Band{
	Level:      LevelUnknown,
	Label:      "Unknown",
	UpperBound: -1,
}

// Classify maps an AQI index to its severity band. Negative indices
// classify as Unknown. Pure and deterministic; used identically for
// instantaneous readings and historical averages.
func Classify(index int) Band {
	if index < 0 {
		return unknownBand
	}
	for _, b := range bands {
		if b.UpperBound < 0 || index <= b.UpperBound {
			return b
		}
	}
	// Unreachable: the last band is open-ended.
	return unknownBand
}

// Bands returns the six numbered severity bands in ascending order.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}
