package layout

import (
	"path/filepath"
	"testing"
)

func TestRectClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside", Rect{10, 10, 50, 50}, Rect{10, 10, 50, 50}},
		{"overflow right", Rect{80, 0, 40, 10}, Rect{60, 0, 40, 10}},
		{"negative", Rect{-5, -20, 30, 30}, Rect{0, 0, 30, 30}},
		{"too big", Rect{10, 10, 150, 120}, Rect{0, 0, 100, 100}},
		{"zero size", Rect{50, 50, 0, -3}, Rect{50, 50, MinExtent, MinExtent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamp()
			if got != tt.want {
				t.Errorf("Clamp(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
			if !got.Valid() {
				t.Errorf("Clamp result %+v is not valid", got)
			}
		})
	}
}

func TestSlideTextBlocks(t *testing.T) {
	s := NewSlide("promo", "https://example.com/a.jpg")
	if s.Image == nil || s.Image.Width != 100 {
		t.Fatalf("Expected full-canvas image frame, got %+v", s.Image)
	}

	a := s.AddTextBlock("first")
	aID := a.ID
	b := s.AddTextBlock("second")
	bID := b.ID
	c := s.AddTextBlock("third")
	cID := c.ID

	if aID == bID || bID == cID {
		t.Fatal("Text block IDs must be unique")
	}
	if s.TextBlocks[0].Y != 70 {
		t.Errorf("Bottom position should place block at y=70, got %f", s.TextBlocks[0].Y)
	}

	if !s.RemoveTextBlock(bID) {
		t.Fatal("RemoveTextBlock returned false")
	}
	if len(s.TextBlocks) != 2 || s.TextBlocks[0].ID != aID || s.TextBlocks[1].ID != cID {
		t.Errorf("Remaining order broken: %+v", s.TextBlocks)
	}
	if s.RemoveTextBlock("missing") {
		t.Error("Removing an unknown id should return false")
	}

	if err := s.SetTextRect(cID, Rect{X: 95, Y: 95, Width: 20, Height: 20}); err != nil {
		t.Fatal(err)
	}
	blk, _ := s.TextBlock(cID)
	if !blk.Rect.Valid() || blk.X != 80 || blk.Y != 80 {
		t.Errorf("SetTextRect did not clamp: %+v", blk.Rect)
	}
	if err := s.SetText("missing", "x"); err != ErrTextBlockNotFound {
		t.Errorf("Expected ErrTextBlockNotFound, got %v", err)
	}
}

func TestStoreRoundTripFormats(t *testing.T) {
	for _, name := range []string{"project.json", "project.yaml"} {
		t.Run(name, func(t *testing.T) {
			p := DefaultProject()
			p.Slides[0].AddTextBlock("Hello")
			p.Slides[0].Style.OverlayType = OverlaySolid
			path := filepath.Join(t.TempDir(), name)

			if err := Save(p, path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(got.Slides) != 1 || len(got.Slides[0].TextBlocks) != 1 {
				t.Fatalf("Unexpected slides: %+v", got.Slides)
			}
			blk := got.Slides[0].TextBlocks[0]
			if blk.Text != "Hello" || blk.ID != p.Slides[0].TextBlocks[0].ID {
				t.Errorf("Block mismatch: %+v", blk)
			}
			if blk.Rect != p.Slides[0].TextBlocks[0].Rect {
				t.Errorf("Rect mismatch: %+v vs %+v", blk.Rect, p.Slides[0].TextBlocks[0].Rect)
			}
			if got.Slides[0].Style.OverlayType != OverlaySolid {
				t.Errorf("Overlay lost: %s", got.Slides[0].Style.OverlayType)
			}
		})
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Slides) != 1 || p.KenBurns.Direction != ZoomIn {
		t.Errorf("Unexpected default project: %+v", p)
	}
}

func TestNormalizeRepairsBlocks(t *testing.T) {
	s := Slide{TextBlocks: []TextBlock{
		{ID: "dup", Rect: Rect{X: 90, Y: 0, Width: 30, Height: 10}},
		{ID: "dup"},
	}}
	s.Normalize()
	if s.TextBlocks[0].ID == s.TextBlocks[1].ID {
		t.Error("Duplicate IDs should be reassigned")
	}
	for _, b := range s.TextBlocks {
		if !b.Rect.Valid() {
			t.Errorf("Block rect invalid after Normalize: %+v", b.Rect)
		}
	}
	if s.Style.LineHeight != 1.2 || s.Style.OverlayType != OverlayGradientBottom {
		t.Errorf("Style defaults not applied: %+v", s.Style)
	}
}

func TestSetImage(t *testing.T) {
	s := NewSlide("s", "")
	s.SetImage("a.png")
	if s.Image == nil || s.Image.URL != "a.png" || !s.Image.Rect.Valid() || s.Image.Width != 100 {
		t.Fatalf("SetImage should create a full-canvas frame: %+v", s.Image)
	}
	s.SetImageRect(Rect{X: 10, Y: 10, Width: 50, Height: 50})
	s.SetImage("b.png")
	if s.Image.URL != "b.png" || s.Image.X != 10 {
		t.Errorf("SetImage should keep the existing frame: %+v", s.Image)
	}
	s.SetImage("")
	if s.Image != nil {
		t.Error("Empty url should remove the image")
	}
}
