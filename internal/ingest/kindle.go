package ingest

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/panelbabel/panelbabel/internal/pages"
)

// PalmDOC container layout: a 16-bit big-endian record count at offset
// 76 followed by 8-byte record-info entries starting at offset 78, each
// beginning with a 32-bit big-endian record start offset.
const (
	palmHeaderLen       = 80
	palmRecordCountOff  = 76
	palmRecordTableOff  = 78
	palmRecordEntryLen  = 8
	minImageRecordBytes = 2048
)

var (
	jpegSignature = []byte{0xFF, 0xD8}
	pngSignature  = []byte{0x89, 0x50, 0x4E, 0x47}
)

// extractKindle scans a MOBI/AZW3 byte buffer for embedded raster
// images. The record table only tells us where records start, not what
// they contain, so every record is sniffed for a JPEG or PNG signature
// and small fragments (thumbnails, text records) are skipped.
//
// A corrupt or truncated table yields the valid prefix of pages rather
// than an error: offsets outside the buffer are dropped before the
// boundaries are computed.
func extractKindle(ctx context.Context, data []byte, name string, b *batcher) error {
	if len(data) < palmHeaderLen {
		slog.Warn("Kindle file too short for a record table", "file", name, "size", len(data))
		return nil
	}

	numRecords := int(binary.BigEndian.Uint16(data[palmRecordCountOff:]))
	offsets := make([]int, 0, numRecords+1)
	for i := 0; i < numRecords; i++ {
		entry := palmRecordTableOff + i*palmRecordEntryLen
		if entry+4 > len(data) {
			break
		}
		off := int(binary.BigEndian.Uint32(data[entry:]))
		if off >= len(data) {
			continue
		}
		offsets = append(offsets, off)
	}
	offsets = append(offsets, len(data))
	sort.Ints(offsets)

	imagesFound := 0
	for i := 0; i < len(offsets)-1; i++ {
		start, end := offsets[i], offsets[i+1]
		if start >= end || end-start <= minImageRecordBytes {
			continue
		}

		var mimeType, ext string
		switch {
		case bytes.HasPrefix(data[start:end], jpegSignature):
			mimeType, ext = "image/jpeg", "jpg"
		case bytes.HasPrefix(data[start:end], pngSignature):
			mimeType, ext = "image/png", "png"
		default:
			continue
		}

		imagesFound++
		blob := make([]byte, end-start)
		copy(blob, data[start:end])
		source := fmt.Sprintf("%s - Img %d.%s", name, imagesFound, ext)
		if err := b.add(ctx, pages.NewRecord(blob, mimeType, source)); err != nil {
			if errors.Is(err, ErrPageLimit) {
				slog.Info("Kindle scan stopped at page limit", "file", name, "images", imagesFound)
			}
			return err
		}
	}

	slog.Info("Kindle scan complete", "file", name, "records", numRecords, "images", imagesFound)
	return b.flush(ctx)
}
