package voxel

import "fmt"

// Level grades a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "unknown"
	}
}

// Code identifies a class of degraded-but-valid operation. Warnings are
// deduplicated per code so a bulk insert cannot flood the handler.
type Code string

const (
	WarnOffGrid           Code = "off-grid"           // anchor point did not land exactly on the grid
	WarnDimsSnapped       Code = "dims-snapped"       // custom dimensions snapped to grid multiples
	WarnHeightSnapped     Code = "height-snapped"     // heightmap column heights snapped to whole layers
	WarnHeightmapFallback Code = "heightmap-fallback" // optimize requested, heightmap extrusion used instead of full greedy
	WarnOptimizeDisabled  Code = "optimize-disabled"  // optimize requested, non-uniform dims forced the naive mesher
)

// Warning is a structured, leveled notification. The model corrects the
// underlying condition automatically; warnings exist so callers can
// observe that a correction happened.
type Warning struct {
	Level   Level
	Code    Code
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s: %s", w.Level, w.Code, w.Message)
}

// WarningSet forwards warnings to a handler, at most once per code.
// The zero handler discards. Reset re-arms every code.
type WarningSet struct {
	handler func(Warning)
	seen    map[Code]bool
}

// NewWarningSet returns a set forwarding to handler (nil discards, but
// deduplication still applies).
func NewWarningSet(handler func(Warning)) *WarningSet {
	return &WarningSet{handler: handler, seen: make(map[Code]bool)}
}

// Emitf records and forwards a warning unless its code already fired.
func (s *WarningSet) Emitf(level Level, code Code, format string, args ...any) {
	if s.seen[code] {
		return
	}
	s.seen[code] = true
	if s.handler != nil {
		s.handler(Warning{Level: level, Code: code, Message: fmt.Sprintf(format, args...)})
	}
}

// Reset forgets which codes have fired.
func (s *WarningSet) Reset() {
	s.seen = make(map[Code]bool)
}
