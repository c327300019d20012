package manifest

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestPath(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	want := filepath.Join("output", "export_2024-03-09_14-05-07.yaml")
	if got := Path("output", ts); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestWriteAndRead(t *testing.T) {
	m := &Manifest{
		Project:   "launch",
		Mode:      "batch",
		CreatedAt: time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC),
		Width:     1080,
		Height:    1350,
	}
	m.Add(1, "intro", "launch_1.png", 2048, nil)
	m.Add(2, "outro", "launch_2.png", 4096, errors.New("upload failed"))

	if m.Failed() != 1 {
		t.Errorf("Expected one failed item, got %d", m.Failed())
	}
	if m.Items[1].Bytes != 0 {
		t.Errorf("Failed item keeps size %d", m.Items[1].Bytes)
	}

	path := filepath.Join(t.TempDir(), "nested", "export.yaml")
	if err := Write(m, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Project != "launch" || !got.CreatedAt.Equal(m.CreatedAt) || len(got.Items) != 2 {
		t.Fatalf("Unexpected manifest %+v", got)
	}
	if got.Items[1].Error != "upload failed" || got.Items[0].Name != "launch_1.png" {
		t.Errorf("Items not preserved: %+v", got.Items)
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("Expected an error for a missing manifest")
	}
}
