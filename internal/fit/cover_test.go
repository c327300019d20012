package fit

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-6

func TestCoverProperty(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		srcW := 10 + r.Float64()*4000
		srcH := 10 + r.Float64()*4000
		frame := Rect{X: r.Float64() * 500, Y: r.Float64() * 500, W: 10 + r.Float64()*2000, H: 10 + r.Float64()*2000}

		src, dst := Cover(srcW, srcH, frame)
		if dst != frame {
			t.Fatalf("Destination %+v differs from frame %+v", dst, frame)
		}
		if src.X < -eps || src.Y < -eps || src.X+src.W > srcW+eps || src.Y+src.H > srcH+eps {
			t.Fatalf("Crop %+v outside source %vx%v", src, srcW, srcH)
		}
		if math.Abs(src.W/src.H-frame.W/frame.H) > 1e-6*(frame.W/frame.H) {
			t.Fatalf("Crop aspect %v != frame aspect %v", src.W/src.H, frame.W/frame.H)
		}

		croppedX := srcW-src.W > eps
		croppedY := srcH-src.H > eps
		if croppedX && croppedY {
			t.Fatalf("Cropped on both axes: %+v", src)
		}
		if croppedX && math.Abs(src.X-(srcW-src.X-src.W)) > eps {
			t.Fatalf("Horizontal crop not symmetric: %+v", src)
		}
		if croppedY && math.Abs(src.Y-(srcH-src.Y-src.H)) > eps {
			t.Fatalf("Vertical crop not symmetric: %+v", src)
		}
	}
}

func TestCoverWideSource(t *testing.T) {
	src, _ := Cover(2000, 1000, Rect{W: 500, H: 500})
	want := Rect{X: 500, Y: 0, W: 1000, H: 1000}
	if src != want {
		t.Errorf("Expected %+v, got %+v", want, src)
	}
}

func TestCoverTallSource(t *testing.T) {
	src, _ := Cover(1000, 3000, Rect{W: 1000, H: 500})
	want := Rect{X: 0, Y: 1250, W: 1000, H: 500}
	if src != want {
		t.Errorf("Expected %+v, got %+v", want, src)
	}
}

func TestTransform(t *testing.T) {
	frame := Rect{W: 100, H: 50}
	got := Transform(frame, 100, 50, 1.2, 10, 0)
	want := Rect{X: -10 + 10, Y: -5, W: 120, H: 60}
	if math.Abs(got.X-want.X) > eps || math.Abs(got.Y-want.Y) > eps || math.Abs(got.W-want.W) > eps || math.Abs(got.H-want.H) > eps {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if same := Transform(frame, 100, 50, 1, 0, 0); same != frame {
		t.Errorf("Identity transform changed frame: %+v", same)
	}
}
