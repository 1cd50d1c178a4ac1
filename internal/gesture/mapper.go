package gesture

import "math"

// Landmark indices within a 21-point hand.
const (
	WristIndex    = 0
	ThumbTipIndex = 4
	IndexTipIndex = 8
)

const (
	closedDistance = 0.02
	opennessRange  = 0.15
)

// Landmark is one hand keypoint in the detector's normalized image space.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is the landmark set of one detected hand.
type Hand []Landmark

// Map converts the first detected hand into a State. A nil hand, or one too
// short to contain the fingertip landmarks, maps to Idle. Map keeps no state
// between calls.
func Map(hand Hand) State {
	if len(hand) <= IndexTipIndex {
		return Idle()
	}
	thumb, index, wrist := hand[ThumbTipIndex], hand[IndexTipIndex], hand[WristIndex]

	dx := thumb.X - index.X
	dy := thumb.Y - index.Y
	dz := thumb.Z - index.Z
	distance := math.Sqrt(dx*dx + dy*dy + dz*dz)

	return State{
		Detected: true,
		Openness: Openness(distance),
		X:        (1-wrist.X)*2 - 1,
		Y:        -(wrist.Y*2 - 1),
	}.Sanitize()
}

// Openness normalizes a thumb-to-index distance: 0.02 and below is closed,
// 0.17 and above is fully open.
func Openness(distance float64) float64 {
	return clamp((distance-closedDistance)/opennessRange, 0, 1)
}
