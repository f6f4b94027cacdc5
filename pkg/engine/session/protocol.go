package session

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"pixelbattle/pkg/game/state"
)

// Message type tags used on the wire.
const (
	TypeInit          = "init"
	TypePixelUpdate   = "pixel_update"
	TypeUserCount     = "user_count"
	TypePing          = "ping"
	TypePong          = "pong"
	TypeError         = "error"
	TypeGetStats      = "get_stats"
	TypeStatsResponse = "stats_response"
)

// ErrMalformed is returned by Decode for payloads that cannot be interpreted.
var ErrMalformed = errors.New("malformed message")

// WirePixel is a cell as the server encodes it. Absent fields stay nil.
type WirePixel struct {
	X     *int    `json:"x"`
	Y     *int    `json:"y"`
	Color *string `json:"color"`
}

func (p WirePixel) toState() (state.Pixel, error) {
	if p.X == nil || p.Y == nil || p.Color == nil {
		return state.Pixel{}, fmt.Errorf("%w: pixel without x/y/color", ErrMalformed)
	}
	if !state.ValidHex(*p.Color) {
		return state.Pixel{}, fmt.Errorf("%w: pixel color %q", ErrMalformed, *p.Color)
	}
	return state.Pixel{X: *p.X, Y: *p.Y, Color: *p.Color}, nil
}

// decodePixels converts a pixel list. One bad entry rejects the list.
func decodePixels(wire []WirePixel) ([]state.Pixel, error) {
	pixels := make([]state.Pixel, 0, len(wire))
	for _, w := range wire {
		p, err := w.toState()
		if err != nil {
			return nil, err
		}
		pixels = append(pixels, p)
	}
	return pixels, nil
}

// CanvasInfo is the optional geometry block of an init message.
type CanvasInfo struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	CooldownTime int `json:"cooldown_time"`
}

// Inbound is a decoded server message: one of *Init, *PixelUpdate,
// *UserCount, *Pong, *ServerError, *Stats or *Unknown.
type Inbound interface {
	inbound()
}

// Init is the snapshot sent once per connection.
type Init struct {
	Pixels      []state.Pixel
	OnlineUsers int
	CanvasInfo  *CanvasInfo
}

// PixelUpdate carries one or more cell changes in arrival order.
type PixelUpdate struct {
	Pixels []state.Pixel
}

// UserCount is an online-count update.
type UserCount struct {
	Count int
}

// Pong answers a heartbeat; Timestamp echoes the ping, in Unix milliseconds.
type Pong struct {
	Timestamp int64
}

// ServerError is an application-level problem reported by the server.
type ServerError struct {
	Message string
}

// Stats is the reply to a get_stats request.
type Stats struct {
	Stats map[string]any
}

// Unknown is any message whose tag the client does not handle.
type Unknown struct {
	Type string
}

func (*Init) inbound()        {}
func (*PixelUpdate) inbound() {}
func (*UserCount) inbound()   {}
func (*Pong) inbound()        {}
func (*ServerError) inbound() {}
func (*Stats) inbound()       {}
func (*Unknown) inbound()     {}

type envelope struct {
	Type        string         `json:"type"`
	Pixels      []WirePixel    `json:"pixels"`
	OnlineUsers *int           `json:"online_users"`
	CanvasInfo  *CanvasInfo    `json:"canvas_info"`
	X           *int           `json:"x"`
	Y           *int           `json:"y"`
	Color       *string        `json:"color"`
	Updates     []WirePixel    `json:"updates"`
	Count       *int           `json:"count"`
	Timestamp   *float64       `json:"timestamp"`
	Message     string         `json:"message"`
	Stats       map[string]any `json:"stats"`
}

// Decode parses one frame. Unknown tags decode to *Unknown; anything that
// cannot be interpreted returns an error wrapping ErrMalformed.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	switch env.Type {
	case TypeInit:
		pixels, err := decodePixels(env.Pixels)
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
		msg := &Init{CanvasInfo: env.CanvasInfo, Pixels: pixels}
		if env.OnlineUsers != nil {
			msg.OnlineUsers = *env.OnlineUsers
		}
		return msg, nil

	case TypePixelUpdate:
		wire := env.Updates
		if wire == nil {
			if env.X == nil && env.Y == nil && env.Color == nil {
				return nil, fmt.Errorf("%w: pixel_update without x/y/color or updates", ErrMalformed)
			}
			wire = []WirePixel{{X: env.X, Y: env.Y, Color: env.Color}}
		}
		pixels, err := decodePixels(wire)
		if err != nil {
			return nil, fmt.Errorf("pixel_update: %w", err)
		}
		return &PixelUpdate{Pixels: pixels}, nil

	case TypeUserCount:
		if env.Count == nil {
			return nil, fmt.Errorf("%w: user_count without count", ErrMalformed)
		}
		return &UserCount{Count: *env.Count}, nil

	case TypePong:
		if env.Timestamp == nil {
			return nil, fmt.Errorf("%w: pong without timestamp", ErrMalformed)
		}
		return &Pong{Timestamp: int64(*env.Timestamp)}, nil

	case TypeError:
		return &ServerError{Message: env.Message}, nil

	case TypeStatsResponse:
		return &Stats{Stats: env.Stats}, nil
	}

	return &Unknown{Type: env.Type}, nil
}

// PlacePixel is the client's placement request.
type PlacePixel struct {
	Type  string `json:"type"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Color string `json:"color"`
}

// NewPlacePixel builds a pixel_update request.
func NewPlacePixel(x, y int, color string) PlacePixel {
	return PlacePixel{Type: TypePixelUpdate, X: x, Y: y, Color: color}
}

// Ping is the heartbeat request.
type Ping struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// NewPing builds a heartbeat stamped with ms Unix milliseconds.
func NewPing(ms int64) Ping {
	return Ping{Type: TypePing, Timestamp: ms}
}

// GetStats asks the server for canvas and connection statistics.
type GetStats struct {
	Type string `json:"type"`
}

// NewGetStats builds a get_stats request.
func NewGetStats() GetStats {
	return GetStats{Type: TypeGetStats}
}
