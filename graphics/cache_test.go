package graphics_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/dcore-engine/dcore/graphics"
	"github.com/dcore-engine/dcore/graphics/graphicstest"
	"github.com/google/uuid"
)

func cacheBytes(t *testing.T, h graphics.CacheHeader, payload ...byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		t.Fatal(err)
	}
	buf.Write(payload)
	return buf.Bytes()
}

func TestCacheHeader(t *testing.T) {
	dev := graphicstest.Discrete()
	dev.PipelineCacheUUID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	good := graphics.NewCacheHeader(dev)
	if good.Length != 32 {
		t.Fatalf("header length = %d, want 32", good.Length)
	}

	parsed, err := graphics.ParseCacheHeader(cacheBytes(t, good, 1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if parsed != good {
		t.Fatalf("parsed %+v, want %+v", parsed, good)
	}
	if err := parsed.Validate(dev); err != nil {
		t.Fatalf("validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(h *graphics.CacheHeader)
	}{
		{"length", func(h *graphics.CacheHeader) { h.Length = 0 }},
		{"version", func(h *graphics.CacheHeader) { h.Version = 2 }},
		{"vendor", func(h *graphics.CacheHeader) { h.VendorID++ }},
		{"device", func(h *graphics.CacheHeader) { h.DeviceID++ }},
		{"uuid", func(h *graphics.CacheHeader) { h.UUID = uuid.Nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := good
			tt.mutate(&h)
			if err := h.Validate(dev); !errors.Is(err, graphics.ErrBadCacheHeader) {
				t.Fatalf("err = %v, want ErrBadCacheHeader", err)
			}
		})
	}

	if _, err := graphics.ParseCacheHeader([]byte{1, 2, 3}); !errors.Is(err, graphics.ErrBadCacheHeader) {
		t.Fatalf("short data: err = %v", err)
	}
}

func TestNewMaterialCache(t *testing.T) {
	f := initFixture(t)
	dev := f.state.PhysicalDevice()

	valid := cacheBytes(t, graphics.NewCacheHeader(dev), 9, 9)
	cache, err := f.state.NewMaterialCache(valid)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(f.driver.CacheData, valid) {
		t.Fatal("valid data should reach the driver")
	}
	data, err := f.state.MaterialCacheData(cache)
	if err != nil || !bytes.Equal(data, valid) {
		t.Fatalf("cache data = %v, %v", data, err)
	}
	f.state.FreeMaterialCache(cache)
	if f.driver.LiveOf("pipeline cache") != 0 {
		t.Fatal("cache leaked")
	}

	stale := graphics.NewCacheHeader(dev)
	stale.DeviceID++
	warnings := f.log.Stats().Warn
	if _, err := f.state.NewMaterialCache(cacheBytes(t, stale)); err != nil {
		t.Fatal(err)
	}
	if len(f.driver.CacheData) != 0 {
		t.Fatal("stale data should be discarded")
	}
	if f.log.Stats().Warn != warnings+1 {
		t.Fatal("discarding should warn")
	}
}

func TestNullMaterialCache(t *testing.T) {
	f := initFixture(t)
	if _, err := f.state.MaterialCacheData(graphics.PipelineCache{}); err == nil {
		t.Fatal("expected an error")
	}
	f.state.FreeMaterialCache(graphics.PipelineCache{})
	if f.log.Stats().Error != 1 || f.driver.Count("DestroyPipelineCache") != 0 {
		t.Fatal("null free should only log")
	}
}
