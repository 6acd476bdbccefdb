package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/forecast-enrichment-service/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func TestSerializeToMessage(t *testing.T) {
	slot := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	retrieved := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	ds := domain.ForecastDataset{
		City:        "London",
		Source:      domain.SourceLive,
		RetrievedAt: retrieved,
	}
	sample := domain.EnrichedSample{
		CanonicalSample: domain.CanonicalSample{
			Timestamp:    slot,
			TemperatureC: 30,
			HumidityPct:  60,
			PressureHPa:  1010,
			WindSpeedKMH: 9,
		},
		HeatIndexC: fptr(32.86),
		DewPointC:  fptr(21.39),
	}

	msg, err := serializeToMessage(ds, sample)
	require.NoError(t, err)

	assert.Equal(t, []byte("London|2025-03-01T12:00:00Z"), msg.Key)
	assert.Contains(t, string(msg.Value), `"temperature_c":30`)
	assert.Contains(t, string(msg.Value), `"heat_index_c":32.86`)

	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "city", msg.Headers[0].Key)
	assert.Equal(t, []byte("London"), msg.Headers[0].Value)
	assert.Equal(t, "source", msg.Headers[1].Key)
	assert.Equal(t, []byte("live"), msg.Headers[1].Value)
	assert.Equal(t, "retrieved_at", msg.Headers[2].Key)
	assert.Equal(t, []byte("2025-03-01T09:30:00Z"), msg.Headers[2].Value)
}

func TestSerializeToMessage_NullDerivedFields(t *testing.T) {
	ds := domain.ForecastDataset{City: "London", Source: domain.SourceFallback}
	sample := domain.EnrichedSample{
		CanonicalSample: domain.CanonicalSample{
			Timestamp:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			TemperatureC: 15,
			WindSpeedKMH: 3,
		},
	}

	msg, err := serializeToMessage(ds, sample)
	require.NoError(t, err)

	// Out-of-domain derived fields are explicit nulls, never omitted.
	assert.Contains(t, string(msg.Value), `"heat_index_c":null`)
	assert.Contains(t, string(msg.Value), `"wind_chill_c":null`)
	assert.Contains(t, string(msg.Value), `"dew_point_c":null`)
}
