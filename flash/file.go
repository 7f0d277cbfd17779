package flash

import (
	"os"

	"github.com/pkg/errors"
)

// File is an *os.File-backed Device, for the CLI's persistent mode. Grounded
// on original_source/src/flash.c's flashInit/flashWrite/flashRead/
// flashBlockErase (lseek followed by read/write against a flash.bin file),
// ported to Go's ReadAt/WriteAt instead of an explicit seek+read/write pair.
type File struct {
	geom Geometry
	f    *os.File
}

// OpenFile opens (creating and formatting if necessary) a flash.File backed
// by path. A freshly created file is fully erased, matching flashInit's
// behavior of writing 0xFF to every page of a newly created backing file.
func OpenFile(path string, geom Geometry) (*File, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}

	created := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		created = true
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "flash: open %s", path)
	}

	dev := &File{geom: geom, f: f}

	if created {
		erasedPage := make([]byte, geom.PageSize)
		for i := range erasedPage {
			erasedPage[i] = Erased
		}
		for off := 0; off < geom.FlashSize; off += geom.PageSize {
			if _, err := f.WriteAt(erasedPage, int64(off)); err != nil {
				f.Close()
				return nil, errors.Wrap(err, "flash: format backing file")
			}
		}
	}

	return dev, nil
}

func (d *File) Geometry() Geometry { return d.geom }

func (d *File) ReadAt(offset int64, p []byte) (int, error) {
	n, err := d.f.ReadAt(p, offset)
	if err != nil {
		return n, errors.Wrap(err, "flash: read")
	}
	return n, nil
}

func (d *File) WriteAt(offset int64, p []byte) (int, error) {
	n, err := d.f.WriteAt(p, offset)
	if err != nil {
		return n, errors.Wrap(err, "flash: write")
	}
	return n, nil
}

func (d *File) EraseBlocks(blockNum, blockCount int) error {
	erasedPage := make([]byte, d.geom.PageSize)
	for i := range erasedPage {
		erasedPage[i] = Erased
	}
	for b := 0; b < blockCount; b++ {
		blockStart := (blockNum + b) * d.geom.BlockSize
		for off := 0; off < d.geom.BlockSize; off += d.geom.PageSize {
			if _, err := d.f.WriteAt(erasedPage, int64(blockStart+off)); err != nil {
				return errors.Wrap(err, "flash: erase block")
			}
		}
	}
	return nil
}

// Close releases the underlying file handle.
func (d *File) Close() error { return d.f.Close() }
