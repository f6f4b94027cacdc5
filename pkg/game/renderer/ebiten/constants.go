package ebiten

import "image/color"

// Color palette for the window chrome
var (
	colorBackground      = color.RGBA{26, 26, 46, 255}    // Dark blue-gray
	colorHeader          = color.RGBA{20, 20, 35, 250}    // Header strip
	colorSubtle          = color.RGBA{120, 130, 180, 255} // Soft blue-purple-gray
	colorText            = color.RGBA{200, 210, 245, 255} // Soft off-white with blue-purple tint
	colorAction          = color.RGBA{180, 150, 250, 255} // Blue-purple
	colorDenied          = color.RGBA{255, 100, 100, 255} // Bright red
	colorWarning         = color.RGBA{255, 220, 100, 255} // Yellow
	colorSuccess         = color.RGBA{100, 255, 150, 255} // Green
	colorPanelBackground = color.RGBA{30, 30, 50, 220}    // Semi-transparent dark
	colorPanelBorder     = color.RGBA{80, 80, 100, 255}
	colorSwatchSelected  = color.RGBA{255, 255, 255, 255}
	colorButton          = color.RGBA{90, 70, 160, 255}
	colorButtonDisabled  = color.RGBA{60, 60, 80, 255}
	colorBanner          = color.RGBA{150, 30, 40, 235}

	// Connection indicator
	colorConnected    = color.RGBA{0, 220, 0, 255}
	colorConnecting   = color.RGBA{255, 200, 0, 255}
	colorDisconnected = color.RGBA{140, 140, 160, 255}
	colorFailed       = color.RGBA{255, 80, 80, 255}
)

// Layout in logical units
const (
	baseFontSize   = 14.0
	headerPadding  = 20.0
	sidebarWidth   = 200.0
	sidebarPadding = 12.0
	swatchSize     = 36.0
	swatchGap      = 8.0
	swatchColumns  = 4
	buttonHeight   = 36.0
	panelMargin    = 20.0
)

const (
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
)

const (
	keyRepeatInitialDelay = 500 // Initial delay before first repeat (milliseconds)
	keyRepeatInterval     = 100 // Interval between repeat events (milliseconds)
)

const consoleAnimDuration = 200 // milliseconds

// maxConsoleOutput caps the console scrollback.
const maxConsoleOutput = 100
