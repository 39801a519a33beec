package thetadup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimateExactMode(t *testing.T) {
	require.Equal(t, float64(42), estimate(42, MaxTheta))
}

func TestEstimateScalesByInverseTheta(t *testing.T) {
	half := MaxTheta / 2
	got := estimate(500, half)
	require.InDelta(t, 1000.0, got, 1.0)
}

func TestEstimateZeroRetained(t *testing.T) {
	require.Equal(t, float64(0), estimate(0, MaxTheta/2))
}

func TestBoundsCollapseInExactMode(t *testing.T) {
	lower, err := lowerBound(100, MaxTheta, false, 2)
	require.NoError(t, err)
	upper, err := upperBound(100, MaxTheta, false, 2)
	require.NoError(t, err)
	require.Equal(t, float64(100), lower)
	require.Equal(t, float64(100), upper)
}

func TestBoundsWidenWithEstimationMode(t *testing.T) {
	theta := MaxTheta / 4
	lower, err := lowerBound(1000, theta, true, 2)
	require.NoError(t, err)
	upper, err := upperBound(1000, theta, true, 2)
	require.NoError(t, err)
	est := estimate(1000, theta)
	require.Less(t, lower, est)
	require.Greater(t, upper, est)
}

func TestBoundsRejectInvalidNumStdDevs(t *testing.T) {
	_, err := lowerBound(100, MaxTheta/2, true, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = upperBound(100, MaxTheta/2, true, 4)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBoundsWidenAsNumStdDevsGrows(t *testing.T) {
	theta := MaxTheta / 4
	u1, err := upperBound(1000, theta, true, 1)
	require.NoError(t, err)
	u3, err := upperBound(1000, theta, true, 3)
	require.NoError(t, err)
	require.Less(t, u1, u3)
}
