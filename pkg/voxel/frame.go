package voxel

import v3 "github.com/deadsy/sdfx/vec/v3"

// Frame is the model-wide coordinate convention: which world axis is
// vertical. Internally everything is stored Y-up; a Z-up frame swaps
// the 2nd and 3rd components of points and dimensions at the model
// boundary and swaps them back at triangle emission.
type Frame int

const (
	FrameYUp Frame = iota // Y axis is vertical (mathematical convention)
	FrameZUp              // Z axis is vertical (3D printing convention)
)

// Valid reports whether f is a known frame.
func (f Frame) Valid() bool {
	return f == FrameYUp || f == FrameZUp
}

func (f Frame) String() string {
	switch f {
	case FrameYUp:
		return "y-up"
	case FrameZUp:
		return "z-up"
	default:
		return "unknown"
	}
}

// ParseFrame maps a user spelling to a Frame.
func ParseFrame(s string) (Frame, error) {
	switch s {
	case "y-up", "y_up":
		return FrameYUp, nil
	case "z-up", "z_up":
		return FrameZUp, nil
	}
	return 0, ErrInvalidConvention
}

// ToInternal converts a user-frame point to the internal Y-up frame.
// The transform is its own inverse.
func (f Frame) ToInternal(p v3.Vec) v3.Vec {
	if f == FrameZUp {
		p.Y, p.Z = p.Z, p.Y
	}
	return p
}

// FromInternal converts an internal Y-up point back to the user frame.
func (f Frame) FromInternal(p v3.Vec) v3.Vec {
	return f.ToInternal(p)
}

// DimsToInternal reorders user-frame dimensions into the internal frame.
func (f Frame) DimsToInternal(d Dims) Dims {
	if f == FrameZUp {
		d.Y, d.Z = d.Z, d.Y
	}
	return d
}
