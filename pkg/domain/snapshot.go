package domain

// Snapshot is a full-grid picture handed to persistence after a generation.
type Snapshot struct {
	Generation int    `json:"generation"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Cells      []Cell `json:"cells"`
	// Seams lists the first row of every block except the first, in ascending order.
	Seams []int `json:"seams"`
}

// Row returns row y of the snapshot.
func (s *Snapshot) Row(y int) []Cell {
	return s.Cells[y*s.Width : (y+1)*s.Width]
}

// IsSeam reports whether row y starts a block.
func (s *Snapshot) IsSeam(y int) bool {
	for _, seam := range s.Seams {
		if seam == y {
			return true
		}
		if seam > y {
			return false
		}
	}
	return false
}

// Alive counts live cells.
func (s *Snapshot) Alive() int {
	n := 0
	for _, c := range s.Cells {
		if c == Alive {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.Cells = append([]Cell(nil), s.Cells...)
	out.Seams = append([]int(nil), s.Seams...)
	return &out
}
