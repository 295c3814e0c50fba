package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters(t *testing.T) {
	// Identical points.
	assert.InDelta(t, 0, DistanceMeters(37.5324, 126.9906, 37.5324, 126.9906), 0.001)

	// Gangnam station to Samseong station is roughly 3.3 km.
	d := DistanceMeters(37.4979, 127.0276, 37.5090, 127.0640)
	assert.InDelta(t, 3400, d, 200)

	// Symmetric.
	assert.InDelta(t, d, DistanceMeters(37.5090, 127.0640, 37.4979, 127.0276), 0.001)
}

func TestDistanceMetersShortRange(t *testing.T) {
	// ~100m of latitude is about 0.0009 degrees.
	d := DistanceMeters(37.5000, 127.0000, 37.5009, 127.0000)
	assert.InDelta(t, 100, d, 5)
}

func TestBoundsContains(t *testing.T) {
	b := Bounds{SWLat: 37.50, SWLng: 126.90, NELat: 37.56, NELng: 127.00}

	assert.True(t, b.Contains(37.53, 126.95))
	assert.True(t, b.Contains(37.50, 126.90)) // inclusive edges
	assert.True(t, b.Contains(37.56, 127.00))
	assert.False(t, b.Contains(37.49, 126.95))
	assert.False(t, b.Contains(37.53, 127.01))
}

func TestFromCenter(t *testing.T) {
	b := FromCenter(37.5324, 126.9906, 1.5)

	assert.True(t, b.Contains(37.5324, 126.9906))
	assert.InDelta(t, 37.5324, (b.SWLat+b.NELat)/2, 1e-9)
	assert.InDelta(t, 126.9906, (b.SWLng+b.NELng)/2, 1e-9)

	// The north edge should sit ~1.5 km from the center.
	d := DistanceMeters(37.5324, 126.9906, b.NELat, 126.9906)
	assert.InDelta(t, 1500, d, 20)
}
