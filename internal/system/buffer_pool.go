package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// SurfacePool recycles *image.RGBA render targets per size to keep GC
// pressure low during animated exports. A surface taken from the pool is
// owned by the caller until it is returned; contents are not cleared.
type SurfacePool struct {
	pools map[image.Rectangle]*sync.Pool
	mu    sync.RWMutex

	allocated atomic.Int64
}

func NewSurfacePool() *SurfacePool {
	return &SurfacePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

var globalPool = NewSurfacePool()

// GetSurface takes a w x h surface from the shared pool.
func GetSurface(w, h int) *image.RGBA {
	return globalPool.Get(image.Rect(0, 0, w, h))
}

// PutSurface returns a surface to the shared pool.
func PutSurface(img *image.RGBA) {
	globalPool.Put(img)
}

func (p *SurfacePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					p.allocated.Add(1)
					return image.NewRGBA(rect)
				},
			}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*image.RGBA)
}

func (p *SurfacePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

// Allocated is the number of surfaces created so far.
func (p *SurfacePool) Allocated() int64 {
	return p.allocated.Load()
}
