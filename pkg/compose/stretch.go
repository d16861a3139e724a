package compose

import "strings"

// StretchMode controls how a frame is mapped into a target rectangle.
type StretchMode int

const (
	// Fill stretches to exactly fill the target, ignoring aspect ratio.
	Fill StretchMode = iota
	// Uniform scales preserving aspect ratio so the whole frame is visible,
	// centered with letter/pillar boxing.
	Uniform
	// UniformToFill scales preserving aspect ratio so the frame covers the
	// whole target, centered and cropped at the edges.
	UniformToFill
)

func (m StretchMode) String() string {
	switch m {
	case Fill:
		return "fill"
	case Uniform:
		return "uniform"
	case UniformToFill:
		return "uniformToFill"
	default:
		return "unknown"
	}
}

// ParseStretchMode maps a config string to a StretchMode, defaulting to
// Uniform for anything unrecognized.
func ParseStretchMode(s string) StretchMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fill":
		return Fill
	case "uniformtofill", "cover":
		return UniformToFill
	default:
		return Uniform
	}
}

// DestRect computes where a srcW x srcH frame lands inside a dstW x dstH
// target under the given stretch mode. The returned rectangle is in target
// coordinates and may extend outside the target for UniformToFill (the
// caller clips). ok is false for degenerate input, in which case nothing
// should be rendered.
func DestRect(srcW, srcH, dstW, dstH int, mode StretchMode) (x, y, w, h int, ok bool) {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return 0, 0, 0, 0, false
	}

	switch mode {
	case Fill:
		return 0, 0, dstW, dstH, true

	case UniformToFill:
		scaleW := float64(dstW) / float64(srcW)
		scaleH := float64(dstH) / float64(srcH)
		scale := scaleW
		if scaleH > scaleW {
			scale = scaleH
		}
		w = int(float64(srcW)*scale + 0.5)
		h = int(float64(srcH)*scale + 0.5)
		return (dstW - w) / 2, (dstH - h) / 2, w, h, true

	default: // Uniform
		scaleW := float64(dstW) / float64(srcW)
		scaleH := float64(dstH) / float64(srcH)
		scale := scaleW
		if scaleH < scaleW {
			scale = scaleH
		}
		w = int(float64(srcW)*scale + 0.5)
		h = int(float64(srcH)*scale + 0.5)
		return (dstW - w) / 2, (dstH - h) / 2, w, h, true
	}
}
