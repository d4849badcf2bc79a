// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"math"

	"github.com/sbooth/SFBAudioEngine-sub013/utils"
)

// resample converts interleaved frames from srcRate to dstRate with
// Catmull-Rom interpolation. Edge frames are clamped so the spline has
// four points everywhere.
func resample(in []float32, channels int, srcRate, dstRate float64) []float32 {
	inFrames := len(in) / channels
	if inFrames == 0 {
		return nil
	}

	ratio := srcRate / dstRate
	outFrames := int(math.Ceil(float64(inFrames) * dstRate / srcRate))
	out := make([]float32, 0, outFrames*channels)

	sample := func(frame, c int) float32 {
		if frame < 0 {
			frame = 0
		} else if frame >= inFrames {
			frame = inFrames - 1
		}
		return in[frame*channels+c]
	}

	pos := 0.0
	for o := 0; o < outFrames; o++ {
		i := int(pos)
		if i >= inFrames {
			break
		}
		alpha := float32(pos - float64(i))
		for c := 0; c < channels; c++ {
			out = append(out, utils.CubicInterpolate(
				sample(i-1, c), sample(i, c), sample(i+1, c), sample(i+2, c), alpha))
		}
		pos += ratio
	}
	return out
}
