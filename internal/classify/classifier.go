package classify

import (
	"vpack/internal/geometry"
	"vpack/internal/qr"
	"vpack/internal/sizeprofile"
)

const (
	// DefaultFallbackMaxWidth bounds the fallback payload width in pixels.
	DefaultFallbackMaxWidth = 100
	// DefaultFallbackMaxHeight bounds the fallback payload height in pixels.
	DefaultFallbackMaxHeight = 100
)

// Result describes one classification decision.
type Result struct {
	Class qr.Class
	// Fallback is true when no learned profile was available and the
	// absolute size threshold decided instead. Callers log this as a
	// quality signal; the threshold is inherently approximate.
	Fallback bool
}

// Classifier assigns payload-ROI boundaries to a symbol class using
// learned size profiles, falling back to an absolute threshold when no
// profile has been learned yet.
type Classifier struct {
	profiles          sizeprofile.Store
	fallbackMaxWidth  int
	fallbackMaxHeight int
}

// New builds a classifier over the given profile store. Non-positive
// fallback bounds use the package defaults.
func New(profiles sizeprofile.Store, fallbackMaxWidth, fallbackMaxHeight int) *Classifier {
	if fallbackMaxWidth <= 0 {
		fallbackMaxWidth = DefaultFallbackMaxWidth
	}
	if fallbackMaxHeight <= 0 {
		fallbackMaxHeight = DefaultFallbackMaxHeight
	}
	return &Classifier{
		profiles:          profiles,
		fallbackMaxWidth:  fallbackMaxWidth,
		fallbackMaxHeight: fallbackMaxHeight,
	}
}

// Classify assigns a bounding box to the marker or payload class.
//
// When both class profiles are known the box joins the class with the
// smaller Manhattan distance in (width, height); an exact tie rejects to
// marker. While either profile is still unlearned the absolute threshold
// decides instead, which misclassifies unusually large payload symbols
// until the first confirmed decode seeds the profile.
func (c *Classifier) Classify(box geometry.Box) Result {
	marker, haveMarker := c.profiles.Get(qr.ClassMarker)
	payload, havePayload := c.profiles.Get(qr.ClassPayload)

	if haveMarker && havePayload {
		markerDist := box.ManhattanSizeDistance(marker.Width, marker.Height)
		payloadDist := box.ManhattanSizeDistance(payload.Width, payload.Height)
		if payloadDist < markerDist {
			return Result{Class: qr.ClassPayload}
		}
		return Result{Class: qr.ClassMarker}
	}

	if c.withinFallback(box) {
		return Result{Class: qr.ClassPayload, Fallback: true}
	}
	return Result{Class: qr.ClassMarker, Fallback: true}
}

func (c *Classifier) withinFallback(box geometry.Box) bool {
	return box.W < c.fallbackMaxWidth && box.H < c.fallbackMaxHeight
}
