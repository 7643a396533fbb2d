package oasis

import (
	"strconv"

	"github.com/wippyai/laykit/errors"
	"github.com/wippyai/laykit/oasis/internal/binary"
)

// readRepetition decodes a repetition. Type 0 reuses the modal value;
// the regular forms stay regular in memory and every other form is
// normalized to an explicit offset list that reserializes equivalently.
func readRepetition(r *binary.Reader, m *modalState) (*Repetition, error) {
	start := r.Position()
	typ, err := r.Uint()
	if err != nil {
		return nil, err
	}

	switch typ {
	case repReuse:
		if !m.repetitionOK {
			return nil, errors.BadRepetition(start, "type 0 with no previous repetition")
		}
		return m.repetition, nil

	case repMatrix:
		rep := &Repetition{Kind: RepRegular}
		if rep.XDim, err = countPlus2(r); err != nil {
			return nil, err
		}
		if rep.YDim, err = countPlus2(r); err != nil {
			return nil, err
		}
		var xs, ys uint64
		if xs, err = r.Uint(); err != nil {
			return nil, err
		}
		if ys, err = r.Uint(); err != nil {
			return nil, err
		}
		rep.XSpace, rep.YSpace = int64(xs), int64(ys)
		return remember(m, rep), nil

	case repHorizontal, repVertical:
		rep := &Repetition{Kind: RepRegular, XDim: 1, YDim: 1}
		n, err := countPlus2(r)
		if err != nil {
			return nil, err
		}
		s, err := r.Uint()
		if err != nil {
			return nil, err
		}
		if typ == repHorizontal {
			rep.XDim, rep.XSpace = n, int64(s)
		} else {
			rep.YDim, rep.YSpace = n, int64(s)
		}
		return remember(m, rep), nil

	case repIrregularX, repIrregularXGrid, repIrregularY, repIrregularYGrid:
		n, err := countPlus2(r)
		if err != nil {
			return nil, err
		}
		grid := uint64(1)
		if typ == repIrregularXGrid || typ == repIrregularYGrid {
			if grid, err = r.Uint(); err != nil {
				return nil, err
			}
			if grid == 0 {
				return nil, errors.BadRepetition(start, "zero grid")
			}
		}
		offsets := make([]Delta, 1, n)
		var at int64
		for i := uint64(1); i < n; i++ {
			s, err := r.Uint()
			if err != nil {
				return nil, err
			}
			at += int64(s * grid)
			if typ == repIrregularX || typ == repIrregularXGrid {
				offsets = append(offsets, Delta{X: at})
			} else {
				offsets = append(offsets, Delta{Y: at})
			}
		}
		return remember(m, &Repetition{Kind: RepOffsets, Offsets: offsets}), nil

	case repDiagonalMatrix:
		n, err := countPlus2(r)
		if err != nil {
			return nil, err
		}
		mdim, err := countPlus2(r)
		if err != nil {
			return nil, err
		}
		ndelta, err := readDelta(r)
		if err != nil {
			return nil, err
		}
		mdelta, err := readDelta(r)
		if err != nil {
			return nil, err
		}
		offsets := make([]Delta, 0, n*mdim)
		for j := uint64(0); j < mdim; j++ {
			for i := uint64(0); i < n; i++ {
				offsets = append(offsets, Delta{
					X: int64(i)*ndelta.X + int64(j)*mdelta.X,
					Y: int64(i)*ndelta.Y + int64(j)*mdelta.Y,
				})
			}
		}
		return remember(m, &Repetition{Kind: RepOffsets, Offsets: offsets}), nil

	case repDiagonal:
		n, err := countPlus2(r)
		if err != nil {
			return nil, err
		}
		d, err := readDelta(r)
		if err != nil {
			return nil, err
		}
		offsets := make([]Delta, 0, n)
		for i := uint64(0); i < n; i++ {
			offsets = append(offsets, Delta{X: int64(i) * d.X, Y: int64(i) * d.Y})
		}
		return remember(m, &Repetition{Kind: RepOffsets, Offsets: offsets}), nil

	case repArbitrary, repArbitraryGrid:
		n, err := countPlus2(r)
		if err != nil {
			return nil, err
		}
		grid := int64(1)
		if typ == repArbitraryGrid {
			g, err := r.Uint()
			if err != nil {
				return nil, err
			}
			if g == 0 {
				return nil, errors.BadRepetition(start, "zero grid")
			}
			grid = int64(g)
		}
		offsets := make([]Delta, 1, n)
		var at Delta
		for i := uint64(1); i < n; i++ {
			d, err := readDelta(r)
			if err != nil {
				return nil, err
			}
			at.X += d.X * grid
			at.Y += d.Y * grid
			offsets = append(offsets, at)
		}
		return remember(m, &Repetition{Kind: RepOffsets, Offsets: offsets}), nil
	}

	return nil, errors.BadRepetition(start, "unknown repetition type "+strconv.FormatUint(typ, 10))
}

// writeRepetition emits the regular matrix forms as type 1/2/3 and
// offset lists as type 10. Regular repetitions with a negative spacing
// have no matrix encoding and degrade to an offset list.
func writeRepetition(w *binary.Writer, rep *Repetition) {
	if rep.Kind == RepRegular && rep.XSpace >= 0 && rep.YSpace >= 0 {
		switch {
		case rep.XDim >= 2 && rep.YDim >= 2:
			w.Uint(repMatrix)
			w.Uint(rep.XDim - 2)
			w.Uint(rep.YDim - 2)
			w.Uint(uint64(rep.XSpace))
			w.Uint(uint64(rep.YSpace))
			return
		case rep.YDim <= 1 && rep.XDim >= 2:
			w.Uint(repHorizontal)
			w.Uint(rep.XDim - 2)
			w.Uint(uint64(rep.XSpace))
			return
		case rep.XDim <= 1 && rep.YDim >= 2:
			w.Uint(repVertical)
			w.Uint(rep.YDim - 2)
			w.Uint(uint64(rep.YSpace))
			return
		}
	}

	offsets := rep.Offsets
	if rep.Kind == RepRegular {
		offsets = offsets[:0]
		rep.Each(func(d Delta) {
			offsets = append(offsets, d)
		})
	}
	w.Uint(repArbitrary)
	if len(offsets) < 2 {
		// A degenerate single-instance list still needs a legal count.
		w.Uint(0)
		w.Int(0)
		w.Int(0)
		return
	}
	w.Uint(uint64(len(offsets)) - 2)
	prev := offsets[0]
	for _, d := range offsets[1:] {
		w.Int(d.X - prev.X)
		w.Int(d.Y - prev.Y)
		prev = d
	}
}

func countPlus2(r *binary.Reader) (uint64, error) {
	n, err := r.Uint()
	if err != nil {
		return 0, err
	}
	return n + 2, nil
}

func readDelta(r *binary.Reader) (Delta, error) {
	x, err := r.Int()
	if err != nil {
		return Delta{}, err
	}
	y, err := r.Int()
	if err != nil {
		return Delta{}, err
	}
	return Delta{X: x, Y: y}, nil
}

func remember(m *modalState, rep *Repetition) *Repetition {
	m.repetition = rep
	m.repetitionOK = true
	return rep
}

