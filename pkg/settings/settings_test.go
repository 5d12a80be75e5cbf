package settings

import (
	"runtime"
	"testing"
)

func TestDefaults(t *testing.T) {
	s := New(nil)

	if got := s.CPUPoolSize(); got != runtime.NumCPU() {
		t.Errorf("CPUPoolSize = %d, want %d", got, runtime.NumCPU())
	}
	if got := s.NetworkPoolSize(); got != DefaultNetworkPoolSize {
		t.Errorf("NetworkPoolSize = %d, want %d", got, DefaultNetworkPoolSize)
	}
	if got := s.ThumbnailDir(); got != "" {
		t.Errorf("ThumbnailDir = %q, want empty", got)
	}
	if got := s.DateFormat(); got != DefaultDateFormat {
		t.Errorf("DateFormat = %q, want %q", got, DefaultDateFormat)
	}
	if got := s.AutoNameDigits(); got != DefaultAutoNameDigits {
		t.Errorf("AutoNameDigits = %d, want %d", got, DefaultAutoNameDigits)
	}
}

func TestOverrides(t *testing.T) {
	s := New(MapStore{
		KeyCPUPoolSize:     "3",
		KeyNetworkPoolSize: "16",
		KeyThumbnailDir:    "/tmp/thumbs",
		KeyDateFormat:      "02.01.2006",
		KeyAutoNameDigits:  "4",
	})

	if got := s.CPUPoolSize(); got != 3 {
		t.Errorf("CPUPoolSize = %d", got)
	}
	if got := s.NetworkPoolSize(); got != 16 {
		t.Errorf("NetworkPoolSize = %d", got)
	}
	if got := s.ThumbnailDir(); got != "/tmp/thumbs" {
		t.Errorf("ThumbnailDir = %q", got)
	}
	if got := s.DateFormat(); got != "02.01.2006" {
		t.Errorf("DateFormat = %q", got)
	}
	if got := s.AutoNameDigits(); got != 4 {
		t.Errorf("AutoNameDigits = %d", got)
	}
}

func TestMalformedValuesFallBack(t *testing.T) {
	s := New(MapStore{
		KeyCPUPoolSize:    "zero",
		KeyAutoNameDigits: "-2",
	})

	if got := s.CPUPoolSize(); got != runtime.NumCPU() {
		t.Errorf("CPUPoolSize = %d, want default", got)
	}
	if got := s.AutoNameDigits(); got != DefaultAutoNameDigits {
		t.Errorf("AutoNameDigits = %d, want default", got)
	}
}
