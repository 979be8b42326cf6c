// Package hwc drives an Android hwcomposer2 display through a narrow
// device interface. The production device is the libhybris bridge;
// tests substitute fakes.
package hwc

import "fmt"

// Error is an hwcomposer2 call result. Zero means success.
type Error int32

const (
	// ErrNone is success
	ErrNone Error = 0
	// ErrHasChanges means validate wants composition type changes
	// accepted before present. It is not a failure.
	ErrHasChanges Error = 3
)

func (e Error) Error() string {
	switch e {
	case ErrNone:
		return "hwc: ok"
	case ErrHasChanges:
		return "hwc: has changes"
	default:
		return fmt.Sprintf("hwc: error %d", int32(e))
	}
}

// CompositionType selects who composites a layer
type CompositionType int32

const (
	// CompositionClient means the client renders and the display
	// engine only scans out.
	CompositionClient CompositionType = 1
)

// BlendMode is the layer blend equation
type BlendMode int32

const (
	// BlendNone disables blending
	BlendNone BlendMode = 1
)

// Callbacks receive asynchronous display events. They may be invoked
// from arbitrary threads.
type Callbacks struct {
	Vsync   func(display uint64, timestampNs int64)
	Hotplug func(display uint64, connected bool)
	Refresh func(display uint64)
}

// DisplayConfig is the active mode reported by the panel
type DisplayConfig struct {
	Width, Height int
	VsyncPeriodNs int64
	DpiX, DpiY    float64
}

// Device is the hwcomposer2 device handle
type Device interface {
	// InitGralloc prepares the buffer allocator
	InitGralloc() error
	// RegisterCallbacks installs the event listener
	RegisterCallbacks(cb Callbacks) error
	// GetDisplay resolves a display by id
	GetDisplay(id uint64) (Display, error)
	// Close releases the device
	Close() error
}

// Display is one physical display
type Display interface {
	ActiveConfig() (*DisplayConfig, error)
	SetPowerMode(on bool) error
	CreateLayer() (Layer, error)
	DestroyLayer(layer Layer) error

	// SetClientTarget hands the composited frame to the display.
	// acquireFence is consumed; -1 means none.
	SetClientTarget(slot uint32, buf *GraphicBuffer, acquireFence int, dataspace int32) error
	// Validate checks the layer stack. The returned error may be
	// ErrHasChanges, which callers resolve with AcceptChanges.
	Validate() (numTypes, numRequests uint32, err error)
	AcceptChanges() error
	// Present scans out and returns the retire fence, -1 for none
	Present() (retireFence int, err error)

	Destroy() error
}

// Layer is one composition layer on a display
type Layer interface {
	SetCompositionType(t CompositionType) error
	SetBlendMode(m BlendMode) error
	SetSourceCrop(x, y, w, h float64) error
	SetDisplayFrame(x, y, w, h int32) error
	SetVisibleRegion(x, y, w, h int32) error
	SetPlaneAlpha(alpha float64) error
	SetBuffer(slot uint32, buf *GraphicBuffer, acquireFence int) error
}

// GraphicBuffer is one slot of the native window. Pixels is the mapped
// RGBA_8888 storage.
type GraphicBuffer struct {
	Width, Height int
	Stride        int
	Pixels        []byte

	// AcquireFence signals when rendering into the buffer finished,
	// -1 when none.
	AcquireFence int
	// ReleaseFence is written back after present, -1 when none
	ReleaseFence int
}

// NewGraphicBuffer allocates a buffer with mapped storage
func NewGraphicBuffer(width, height int) *GraphicBuffer {
	return &GraphicBuffer{
		Width:        width,
		Height:       height,
		Stride:       width,
		Pixels:       make([]byte, width*height*4),
		AcquireFence: -1,
		ReleaseFence: -1,
	}
}
