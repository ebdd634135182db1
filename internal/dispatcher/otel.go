package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/INIT-SGGW/HackArena2.5-StereoTanks-Go/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
