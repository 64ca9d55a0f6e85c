// Package persist keeps the session's day-boundary state in a small
// fixed-layout file region so a restarted process can resume where it
// stopped. One process holds the region writable at a time.
package persist

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
	"os"
	"syscall"

	yerrors "github.com/yanun0323/errors"

	"lightning/internal/ledger"
)

const (
	regionVersion uint16 = 1
	regionSize           = 40
)

var (
	regionMagic = [4]byte{'L', 'S', 'R', '1'}
	crcTable    = crc32.MakeTable(crc32.Castagnoli)
)

var (
	ErrInvalidMagic       = errors.New("state region invalid magic")
	ErrUnsupportedVersion = errors.New("state region unsupported version")
	ErrChecksumMismatch   = errors.New("state region checksum mismatch")
	ErrRegionLocked       = errors.New("state region held by another process")
)

// Snapshot is the persisted state: the last trading day processed,
// the last order timestamp, and the cumulative order statistics.
type Snapshot struct {
	TradingDay    uint32
	LastOrderTime int64
	Stats         ledger.Statistic
}

// Region is an exclusively-locked state file. The lock is held for
// the Region's lifetime and released by Close.
type Region struct {
	f *os.File
}

// Open creates or opens the region file and takes the exclusive
// writer lock. A region already locked by another process fails with
// ErrRegionLocked.
func Open(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, yerrors.Wrapf(err, "open state region %s", path)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrRegionLocked
		}
		return nil, yerrors.Wrapf(err, "lock state region %s", path)
	}
	return &Region{f: f}, nil
}

// Load reads the snapshot. A freshly created, empty region loads as
// the zero snapshot.
func (r *Region) Load() (Snapshot, error) {
	buf := make([]byte, regionSize)
	n, err := r.f.ReadAt(buf, 0)
	if n == 0 && errors.Is(err, io.EOF) {
		return Snapshot{}, nil
	}
	if n < regionSize {
		if err == nil || errors.Is(err, io.EOF) {
			return Snapshot{}, ErrInvalidMagic
		}
		return Snapshot{}, yerrors.Wrap(err, "read state region")
	}
	return decode(buf)
}

// Store writes the snapshot in place and syncs it to disk.
func (r *Region) Store(snap Snapshot) error {
	buf := make([]byte, regionSize)
	encode(buf, snap)
	if _, err := r.f.WriteAt(buf, 0); err != nil {
		return yerrors.Wrap(err, "write state region")
	}
	if err := r.f.Sync(); err != nil {
		return yerrors.Wrap(err, "sync state region")
	}
	return nil
}

// Close releases the lock and the file.
func (r *Region) Close() error {
	syscall.Flock(int(r.f.Fd()), syscall.LOCK_UN)
	return r.f.Close()
}

func encode(dst []byte, snap Snapshot) {
	_ = dst[regionSize-1]
	copy(dst[0:4], regionMagic[:])
	binary.LittleEndian.PutUint16(dst[4:6], regionVersion)
	binary.LittleEndian.PutUint16(dst[6:8], uint16(regionSize))
	binary.LittleEndian.PutUint32(dst[8:12], snap.TradingDay)
	binary.LittleEndian.PutUint64(dst[12:20], uint64(snap.LastOrderTime))
	binary.LittleEndian.PutUint32(dst[20:24], snap.Stats.Placed)
	binary.LittleEndian.PutUint32(dst[24:28], snap.Stats.Entrusted)
	binary.LittleEndian.PutUint32(dst[28:32], snap.Stats.Traded)
	binary.LittleEndian.PutUint32(dst[32:36], snap.Stats.Canceled)
	binary.LittleEndian.PutUint32(dst[36:40], crc32.Checksum(dst[0:36], crcTable))
}

func decode(src []byte) (Snapshot, error) {
	if !bytes.Equal(src[0:4], regionMagic[:]) {
		return Snapshot{}, ErrInvalidMagic
	}
	if ver := binary.LittleEndian.Uint16(src[4:6]); ver != regionVersion {
		return Snapshot{}, ErrUnsupportedVersion
	}
	if crc := binary.LittleEndian.Uint32(src[36:40]); crc != crc32.Checksum(src[0:36], crcTable) {
		return Snapshot{}, ErrChecksumMismatch
	}
	return Snapshot{
		TradingDay:    binary.LittleEndian.Uint32(src[8:12]),
		LastOrderTime: int64(binary.LittleEndian.Uint64(src[12:20])),
		Stats: ledger.Statistic{
			Placed:    binary.LittleEndian.Uint32(src[20:24]),
			Entrusted: binary.LittleEndian.Uint32(src[24:28]),
			Traded:    binary.LittleEndian.Uint32(src[28:32]),
			Canceled:  binary.LittleEndian.Uint32(src[32:36]),
		},
	}, nil
}
