package calculate

import "github.com/pookan/stockbot/models"

const (
	volumeShortPeriod = 5
	volumeLongPeriod  = 20
)

// VolumeTrend compares the 5-bar and 20-bar average volume.
func VolumeTrend(volumes []float64) models.VolumeTrend {
	insufficient := models.VolumeTrend{Ratio: models.Insufficient(), Direction: "insufficient data"}
	if len(volumes) < volumeLongPeriod {
		return insufficient
	}

	long := average(volumes[len(volumes)-volumeLongPeriod:])
	if long == 0 {
		return insufficient // no volume data available
	}
	short := average(volumes[len(volumes)-volumeShortPeriod:])
	ratio := short / long

	direction := "flat"
	if ratio > 1.1 {
		direction = "rising"
	} else if ratio < 0.9 {
		direction = "falling"
	}

	return models.VolumeTrend{Ratio: models.Value(ratio), Direction: direction}
}
