package system

import (
	"image"
	"sync"
)

// FramePool recycles *image.RGBA frames between the producer and the encoder
// to keep GC pressure flat during long exports. Frames are keyed by size;
// a recycled frame keeps its old pixels, so callers must overwrite it fully.
type FramePool struct {
	mu    sync.RWMutex
	pools map[image.Point]*sync.Pool
}

var frames = NewFramePool()

func NewFramePool() *FramePool {
	return &FramePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetImage takes a frame of the given bounds from the shared pool.
func GetImage(rect image.Rectangle) *image.RGBA {
	return frames.Get(rect)
}

// PutImage returns a frame to the shared pool.
func PutImage(img *image.RGBA) {
	frames.Put(img)
}

func (p *FramePool) Get(rect image.Rectangle) *image.RGBA {
	key := rect.Size()
	p.mu.RLock()
	pool, ok := p.pools[key]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		if pool, ok = p.pools[key]; !ok {
			pool = &sync.Pool{
				New: func() any { return image.NewRGBA(image.Rectangle{Max: key}) },
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	img := pool.Get().(*image.RGBA)
	// Bounds follow the request even when the pooled frame was allocated at the origin.
	img.Rect = rect
	return img
}

func (p *FramePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, ok := p.pools[img.Rect.Size()]
	p.mu.RUnlock()

	if ok {
		pool.Put(img)
	}
}
