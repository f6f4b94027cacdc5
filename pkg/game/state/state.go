// Package state defines the client data model and the Store paths it lives
// under, with typed accessors so components never spell paths by hand.
package state

import (
	"maps"
	"time"

	"pixelbattle/pkg/engine/store"
)

// Store paths. Each sub-tree has one owning writer: the session owns
// connection.* and network pixels, the viewport controller owns the canvas
// transform and selection, the coordinator owns user.* and ui.*.
const (
	PathCanvas   = "canvas"
	PathPixels   = "canvas.pixels"
	PathScale    = "canvas.scale"
	PathOffsetX  = "canvas.offsetX"
	PathOffsetY  = "canvas.offsetY"
	PathSelected = "canvas.selectedPixel"

	PathConnection        = "connection"
	PathConnected         = "connection.isConnected"
	PathStatus            = "connection.status"
	PathReconnectAttempts = "connection.reconnectAttempts"
	PathOnlineUsers       = "connection.onlineUsers"
	PathLastPing          = "connection.lastPing"
	PathLatency           = "connection.latency"

	PathUser          = "user"
	PathSelectedColor = "user.selectedColor"
	PathIsCooldown    = "user.isCooldown"
	PathCooldownTime  = "user.cooldownTime"

	PathSidebarOpen = "ui.sidebarOpen"

	PathRenderTime     = "metrics.renderTime"
	PathRenderedPixels = "metrics.renderedPixels"
	PathCulledPixels   = "metrics.culledPixels"
	PathFrames         = "metrics.frames"
	PathFPS            = "metrics.fps"

	PathServerWidth    = "server.canvasWidth"
	PathServerHeight   = "server.canvasHeight"
	PathServerCooldown = "server.cooldownTime"
	PathServerStats    = "server.stats"
)

// Cell is one addressable grid position.
type Cell struct {
	X, Y int
}

// Pixel is a colored cell.
type Pixel struct {
	X     int
	Y     int
	Color string
}

// Cell returns the grid position of the pixel.
func (p Pixel) Cell() Cell {
	return Cell{X: p.X, Y: p.Y}
}

// PixelMap holds the last known color of every placed cell. Entries are
// overwritten, never removed.
type PixelMap map[Cell]string

// Defaults are the startup values of the mutable state.
type Defaults struct {
	Color string
}

// Init writes the startup state into s.
func Init(s *store.Store, d Defaults) {
	s.BatchUpdate(map[string]any{
		PathPixels:   PixelMap{},
		PathScale:    1.0,
		PathOffsetX:  0.0,
		PathOffsetY:  0.0,
		PathSelected: (*Cell)(nil),

		PathConnected:         false,
		PathStatus:            "disconnected",
		PathReconnectAttempts: 0,
		PathOnlineUsers:       0,
		PathLastPing:          time.Time{},
		PathLatency:           time.Duration(0),

		PathSelectedColor: d.Color,
		PathIsCooldown:    false,
		PathCooldownTime:  0,

		PathSidebarOpen: true,

		PathFrames: 0,
	})
}

// Pixels returns the current pixel map. The map is never modified after it
// is stored, so it stays a consistent snapshot; writes go through PutPixels
// or ReplacePixels.
func Pixels(s *store.Store) PixelMap {
	pm, ok := store.Value[PixelMap](s, PathPixels)
	if !ok || pm == nil {
		pm = PixelMap{}
		s.Set(PathPixels, pm)
	}
	return pm
}

// PutPixels overwrites the given cells in arrival order and notifies once.
// The stored map is replaced, so listeners see the old map as Previous.
func PutPixels(s *store.Store, pixels ...Pixel) {
	if len(pixels) == 0 {
		return
	}
	pm := maps.Clone(Pixels(s))
	for _, p := range pixels {
		pm[p.Cell()] = p.Color
	}
	s.Set(PathPixels, pm)
}

// NewPixelMap builds a map from a snapshot; later duplicates win.
func NewPixelMap(pixels []Pixel) PixelMap {
	pm := make(PixelMap, len(pixels))
	for _, p := range pixels {
		pm[p.Cell()] = p.Color
	}
	return pm
}

// ReplacePixels discards the known pixels and installs a snapshot.
func ReplacePixels(s *store.Store, pixels []Pixel) {
	s.Set(PathPixels, NewPixelMap(pixels))
}

// Scale returns the current zoom factor.
func Scale(s *store.Store) float64 {
	return store.ValueOr(s, PathScale, 1.0)
}

// Offset returns the screen-space translation of the canvas origin.
func Offset(s *store.Store) (x, y float64) {
	return store.ValueOr(s, PathOffsetX, 0.0), store.ValueOr(s, PathOffsetY, 0.0)
}

// Selected returns the cell pending confirmation, if any.
func Selected(s *store.Store) (Cell, bool) {
	c, ok := store.Value[*Cell](s, PathSelected)
	if !ok || c == nil {
		return Cell{}, false
	}
	return *c, true
}

// Connected reports the live transport state.
func Connected(s *store.Store) bool {
	return store.ValueOr(s, PathConnected, false)
}

// Status returns the session state name.
func Status(s *store.Store) string {
	return store.ValueOr(s, PathStatus, "disconnected")
}

// ReconnectAttempts returns the current retry counter.
func ReconnectAttempts(s *store.Store) int {
	return store.ValueOr(s, PathReconnectAttempts, 0)
}

// OnlineUsers returns the last count received from the server.
func OnlineUsers(s *store.Store) int {
	return store.ValueOr(s, PathOnlineUsers, 0)
}

// Latency returns the last measured heartbeat round trip.
func Latency(s *store.Store) time.Duration {
	return store.ValueOr(s, PathLatency, time.Duration(0))
}

// LastPing returns when liveness was last confirmed.
func LastPing(s *store.Store) time.Time {
	return store.ValueOr(s, PathLastPing, time.Time{})
}

// SelectedColor returns the color the next placement will use.
func SelectedColor(s *store.Store) string {
	return store.ValueOr(s, PathSelectedColor, "")
}

// Cooldown returns whether placement is blocked and the seconds remaining.
func Cooldown(s *store.Store) (active bool, remaining int) {
	return store.ValueOr(s, PathIsCooldown, false), store.ValueOr(s, PathCooldownTime, 0)
}

// SidebarOpen reports whether the side panel takes screen space.
func SidebarOpen(s *store.Store) bool {
	return store.ValueOr(s, PathSidebarOpen, true)
}
