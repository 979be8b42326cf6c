package hwc

import (
	"fmt"
	"sync"
)

const windowBufferCount = 3

// Window is the native window the renderer draws into. It owns a fixed
// set of buffer slots; queueing a buffer hands it to the present
// callback on the queue goroutine, after which the slot becomes
// dequeueable again.
type Window struct {
	width, height int
	present       func(*GraphicBuffer)

	free  chan *GraphicBuffer
	queue chan *GraphicBuffer

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewWindow creates a native window with windowBufferCount slots
func NewWindow(width, height int, present func(*GraphicBuffer)) *Window {
	w := &Window{
		width:   width,
		height:  height,
		present: present,
		free:    make(chan *GraphicBuffer, windowBufferCount),
		queue:   make(chan *GraphicBuffer, windowBufferCount),
		done:    make(chan struct{}),
	}
	for i := 0; i < windowBufferCount; i++ {
		w.free <- NewGraphicBuffer(width, height)
	}

	w.wg.Add(1)
	go w.run()
	return w
}

// Size returns the window dimensions
func (w *Window) Size() (int, int) {
	return w.width, w.height
}

// Dequeue takes a free buffer for rendering
func (w *Window) Dequeue() (*GraphicBuffer, error) {
	select {
	case buf := <-w.free:
		return buf, nil
	case <-w.done:
		return nil, fmt.Errorf("window closed")
	}
}

// Queue submits a rendered buffer for presentation
func (w *Window) Queue(buf *GraphicBuffer) error {
	select {
	case w.queue <- buf:
		return nil
	case <-w.done:
		return fmt.Errorf("window closed")
	}
}

func (w *Window) run() {
	defer w.wg.Done()
	for {
		select {
		case buf := <-w.queue:
			if w.present != nil {
				w.present(buf)
			}
			select {
			case w.free <- buf:
			case <-w.done:
				return
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the queue goroutine and unblocks waiters
func (w *Window) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
	})
	w.wg.Wait()
}
