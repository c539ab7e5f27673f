package depth

import (
	"context"
	"fmt"
	"testing"

	"github.com/ngmaloney/fishing-log/internal/conditions"
	"github.com/ngmaloney/fishing-log/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGage struct {
	height float64
	fail   bool
}

func (s stubGage) FetchLatestGageHeight(ctx context.Context, stationID string) (conditions.GageReading, *conditions.FetchFailure) {
	if s.fail {
		return conditions.GageReading{Height: conditions.DefaultGageHeight, Fallback: true}, &conditions.FetchFailure{
			Source: conditions.SourceGage,
			Kind:   conditions.KindNetwork,
			Err:    fmt.Errorf("%w: unreachable", models.ErrNetworkFailure),
		}
	}
	return conditions.GageReading{Height: s.height}, nil
}

func TestOffset(t *testing.T) {
	// 43139.2 mod 7 = 5.2, -89387.5 mod 3 = 0.5
	assert.InDelta(t, 0.57, Offset(43.1392, -89.3875), 1e-6)

	off := Offset(-12.3456, -0.001)
	assert.GreaterOrEqual(t, off, 0.0)
	assert.Less(t, off, 1.0)
}

func TestEstimate_FixedGage(t *testing.T) {
	est := NewEstimator(stubGage{height: 8.0})

	first := est.Estimate(context.Background(), 43.1392, -89.3875, "05427850")
	second := est.Estimate(context.Background(), 43.1392, -89.3875, "05427850")

	assert.Equal(t, 8.6, first.Depth)
	assert.Equal(t, 8.0, first.GageHeight)
	assert.False(t, first.Fallback)
	assert.Nil(t, first.Warning)
	assert.Equal(t, first, second)
}

func TestEstimate_Fallback(t *testing.T) {
	est := NewEstimator(stubGage{fail: true})

	got := est.Estimate(context.Background(), 43.139, -89.387, "05427850")

	assert.True(t, got.Fallback)
	require.NotNil(t, got.Warning)
	assert.Equal(t, conditions.DefaultGageHeight, got.GageHeight)
	assert.Equal(t, Round1(conditions.DefaultGageHeight+Offset(43.139, -89.387)), got.Depth)
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 8.6, Round1(8.57))
	assert.Equal(t, 8.5, Round1(8.54))
	assert.Equal(t, 0.0, Round1(0.04))
}
