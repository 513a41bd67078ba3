// Package pgm writes snapshots as binary greymap images and reads them back.
package pgm

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/aretw0/halo/pkg/domain"
)

// Grey levels of the image.
const (
	AliveLevel = 255
	DeadLevel  = 0
	// SeamLevel marks dead cells on the first row of a block.
	SeamLevel = 69
	MaxVal    = 255
)

// Encode writes snap as a P5 image.
func Encode(w io.Writer, snap *domain.Snapshot) error {
	if len(snap.Cells) != snap.Width*snap.Height {
		return fmt.Errorf("%w: %d cells for a %dx%d image", domain.ErrPayloadSize, len(snap.Cells), snap.Width, snap.Height)
	}

	var buf bytes.Buffer
	buf.Grow(len(snap.Cells) + 32)
	fmt.Fprintf(&buf, "P5\n%d %d\n%d\n", snap.Width, snap.Height, MaxVal)

	for y := 0; y < snap.Height; y++ {
		dead := byte(DeadLevel)
		if snap.IsSeam(y) {
			dead = SeamLevel
		}
		for _, c := range snap.Row(y) {
			if c == domain.Alive {
				buf.WriteByte(AliveLevel)
			} else {
				buf.WriteByte(dead)
			}
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Decode reads a P5 image written by Encode. Seams are recovered from rows holding
// SeamLevel pixels, so a seam row without dead cells is not reported.
func Decode(r io.Reader) (*domain.Snapshot, error) {
	br := bufio.NewReader(r)

	var magic string
	var width, height, maxVal int
	if _, err := fmt.Fscan(br, &magic, &width, &height, &maxVal); err != nil {
		return nil, fmt.Errorf("failed to read pgm header: %w", err)
	}
	if magic != "P5" || maxVal != MaxVal || width < 0 || height < 0 {
		return nil, fmt.Errorf("unsupported pgm header %q %dx%d maxval %d", magic, width, height, maxVal)
	}
	// A single whitespace byte separates the header from the raster.
	if _, err := br.ReadByte(); err != nil {
		return nil, fmt.Errorf("failed to read pgm header: %w", err)
	}

	raster := make([]byte, width*height)
	if _, err := io.ReadFull(br, raster); err != nil {
		return nil, fmt.Errorf("%w: truncated pgm raster: %w", domain.ErrPayloadSize, err)
	}

	snap := &domain.Snapshot{
		Width:  width,
		Height: height,
		Cells:  make([]domain.Cell, len(raster)),
	}
	for y := 0; y < height; y++ {
		seam := false
		for x := 0; x < width; x++ {
			v := raster[y*width+x]
			if v == AliveLevel {
				snap.Cells[y*width+x] = domain.Alive
			}
			if v == SeamLevel {
				seam = true
			}
		}
		if seam {
			snap.Seams = append(snap.Seams, y)
		}
	}
	return snap, nil
}
