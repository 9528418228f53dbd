package graphics

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ErrBadCacheHeader marks serialized cache data that does not belong to the
// selected device.
var ErrBadCacheHeader = errors.New("bad pipeline cache header")

const cacheHeaderVersionOne = 1

// CacheHeader is the header every serialized pipeline cache starts with.
// All fields are little endian.
type CacheHeader struct {
	Length   uint32
	Version  uint32
	VendorID uint32
	DeviceID uint32
	UUID     uuid.UUID
}

// NewCacheHeader returns the header a cache created on dev would carry.
func NewCacheHeader(dev PhysicalDeviceInfo) CacheHeader {
	return CacheHeader{
		Length:   uint32(binary.Size(CacheHeader{})),
		Version:  cacheHeaderVersionOne,
		VendorID: dev.VendorID,
		DeviceID: dev.DeviceID,
		UUID:     dev.PipelineCacheUUID,
	}
}

func ParseCacheHeader(data []byte) (CacheHeader, error) {
	var h CacheHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &h); err != nil {
		return h, errors.Mark(errors.Wrap(err, "read pipeline cache header"), ErrBadCacheHeader)
	}
	return h, nil
}

// Validate reports every way the header disagrees with dev.
func (h CacheHeader) Validate(dev PhysicalDeviceInfo) error {
	var err error
	if h.Length == 0 {
		err = errors.CombineErrors(err, errors.Wrapf(ErrBadCacheHeader, "header length 0x%x", h.Length))
	}
	if h.Version != cacheHeaderVersionOne {
		err = errors.CombineErrors(err, errors.Wrapf(ErrBadCacheHeader, "unsupported header version 0x%x", h.Version))
	}
	if h.VendorID != dev.VendorID {
		err = errors.CombineErrors(err, errors.Wrapf(ErrBadCacheHeader, "vendor ID 0x%x, device has 0x%x", h.VendorID, dev.VendorID))
	}
	if h.DeviceID != dev.DeviceID {
		err = errors.CombineErrors(err, errors.Wrapf(ErrBadCacheHeader, "device ID 0x%x, device has 0x%x", h.DeviceID, dev.DeviceID))
	}
	if h.UUID != dev.PipelineCacheUUID {
		err = errors.CombineErrors(err, errors.Wrapf(ErrBadCacheHeader, "UUID %s, device has %s", h.UUID, dev.PipelineCacheUUID))
	}
	return err
}

// NewMaterialCache creates a pipeline cache for NewMaterial. Initial data
// whose header does not match the selected device is dropped with a
// warning and an empty cache is created instead.
func (s *State) NewMaterialCache(initial []byte) (PipelineCache, error) {
	if len(initial) > 0 {
		header, err := ParseCacheHeader(initial)
		if err == nil {
			err = header.Validate(s.physical)
		}
		if err != nil {
			s.log.Warn("Discarding pipeline cache data", "error", err)
			initial = nil
		}
	}

	cache, err := s.driver.CreatePipelineCache(initial)
	if err != nil {
		return PipelineCache{}, errors.Wrap(err, "create pipeline cache")
	}
	s.log.Debug("Pipeline cache created", "bytes", len(initial))
	return cache, nil
}

// MaterialCacheData serializes cache for the next run.
func (s *State) MaterialCacheData(cache PipelineCache) ([]byte, error) {
	if !cache.Initialized() {
		return nil, errors.New("null pipeline cache")
	}
	return s.driver.PipelineCacheData(cache)
}

func (s *State) FreeMaterialCache(cache PipelineCache) {
	if !cache.Initialized() {
		s.log.Error("Tried to free null pipeline cache")
		return
	}
	s.driver.DestroyPipelineCache(cache)
}
