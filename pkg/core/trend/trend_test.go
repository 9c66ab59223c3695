package trend

import (
	"testing"
	"time"

	"fundamental_engine/pkg/apperr"

	"github.com/stretchr/testify/assert"
)

func series(values ...float64) []Point {
	pts := make([]Point, len(values))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		pts[i] = Point{T: base.AddDate(0, i, 0), Value: v}
	}
	return pts
}

func TestAnalyze_InsufficientData(t *testing.T) {
	_, err := Analyze("acme", "revenue", time.Now(), series(1, 2))
	assert.Error(t, err)
	assert.True(t, errorsIs(err, apperr.InsufficientData))
}

func errorsIs(err error, kind apperr.Kind) bool {
	k, ok := apperr.KindOf(err)
	return ok && k == kind
}

func TestAnalyze_StrictlyIncreasingSeriesIsImproving(t *testing.T) {
	m, err := Analyze("acme", "revenue", time.Now(), series(100, 110, 121, 133.1, 146.4))
	assert.NoError(t, err)
	assert.Greater(t, m.Slope, 0.0)
	assert.Equal(t, "improving", string(m.Direction))
	assert.NotNil(t, m.CAGR)
}

func TestAnalyze_CAGRNilOnSignChange(t *testing.T) {
	m, err := Analyze("acme", "net_income", time.Now(), series(-10, 5, 8))
	assert.NoError(t, err)
	assert.Nil(t, m.CAGR)
}

func TestAnalyze_FlatSeriesIsStable(t *testing.T) {
	m, err := Analyze("acme", "revenue", time.Now(), series(100, 100, 100, 100))
	assert.NoError(t, err)
	assert.Equal(t, "stable", string(m.Direction))
}
