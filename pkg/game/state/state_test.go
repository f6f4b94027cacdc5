package state

import (
	"image/color"
	"testing"

	"pixelbattle/pkg/engine/store"
)

func newState(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	Init(s, Defaults{Color: "#000000"})
	return s
}

func TestInit_Defaults(t *testing.T) {
	s := newState(t)
	if got := Scale(s); got != 1 {
		t.Errorf("Scale = %v, want 1", got)
	}
	if _, ok := Selected(s); ok {
		t.Error("Selected reported a cell on a fresh state")
	}
	if Connected(s) {
		t.Error("Connected = true on a fresh state")
	}
	if got := SelectedColor(s); got != "#000000" {
		t.Errorf("SelectedColor = %q, want #000000", got)
	}
	if active, remaining := Cooldown(s); active || remaining != 0 {
		t.Errorf("Cooldown = %v, %d, want false, 0", active, remaining)
	}
}

func TestPutPixels_LaterUpdateWins(t *testing.T) {
	s := newState(t)
	notified := 0
	s.Subscribe(PathPixels, func(store.Change) { notified++ })

	PutPixels(s, Pixel{X: 1, Y: 1, Color: "#FF0000"}, Pixel{X: 1, Y: 1, Color: "#00FF00"})

	if got := Pixels(s)[Cell{1, 1}]; got != "#00FF00" {
		t.Errorf("pixel (1,1) = %q, want #00FF00", got)
	}
	if notified != 1 {
		t.Errorf("notifications = %d, want 1", notified)
	}
}

func TestPutPixels_PreviousIsOldSnapshot(t *testing.T) {
	s := newState(t)
	PutPixels(s, Pixel{X: 1, Y: 1, Color: "#FF0000"})

	var oldColor, newColor string
	s.Subscribe(PathPixels, func(c store.Change) {
		oldColor = c.Previous.(PixelMap)[Cell{1, 1}]
		newColor = c.Value.(PixelMap)[Cell{1, 1}]
	})
	kept := Pixels(s)
	PutPixels(s, Pixel{X: 1, Y: 1, Color: "#00FF00"})

	if oldColor != "#FF0000" || newColor != "#00FF00" {
		t.Errorf("change at (1,1) = %q -> %q, want #FF0000 -> #00FF00", oldColor, newColor)
	}
	if got := kept[Cell{1, 1}]; got != "#FF0000" {
		t.Errorf("earlier snapshot changed to %q", got)
	}
}

func TestReplacePixels_DiscardsPrevious(t *testing.T) {
	s := newState(t)
	PutPixels(s, Pixel{X: 5, Y: 5, Color: "#FFFFFF"})
	ReplacePixels(s, []Pixel{{X: 0, Y: 0, Color: "#000000"}})

	pm := Pixels(s)
	if len(pm) != 1 || pm[Cell{0, 0}] != "#000000" {
		t.Errorf("pixels = %v, want only (0,0)=#000000", pm)
	}
}

func TestSelected_RoundTrip(t *testing.T) {
	s := newState(t)
	s.Set(PathSelected, &Cell{X: 3, Y: 4})
	c, ok := Selected(s)
	if !ok || c != (Cell{3, 4}) {
		t.Errorf("Selected = %v, %v, want {3 4}, true", c, ok)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00ff80", color.RGBA{0, 255, 128, 255}, false},
		{"#fff", color.RGBA{255, 255, 255, 255}, false},
		{"#12345", color.RGBA{}, true},
		{"#12345g", color.RGBA{}, true},
		{"#12 345", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidHex(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"#A1B2C3", true},
		{"#abc", true},
		{"A1B2C3", false},
		{"#GGGGGG", false},
		{"#12345g", false},
		{"#1234 5", false},
		{"#12 345", false},
		{"# 12345", false},
		{"#1 2", false},
		{"#1234567", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidHex(tt.in); got != tt.want {
			t.Errorf("ValidHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
