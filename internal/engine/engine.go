// Package engine steps the fire-weather recurrence over an aligned daily
// table. Cells are independent within a day and computed in parallel
// chunks; days are strictly sequential, with a full barrier before each
// new day so every cell's carried state is materialized first.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/fire-weather-index/internal/align"
	"github.com/couchcryptid/fire-weather-index/internal/domain"
)

// Options configure a run.
type Options struct {
	// Initial is the starting state broadcast to every cell that carries
	// data somewhere in the range. Zero value means domain.DefaultCodes.
	Initial domain.Codes

	// InitialByCell, when non-nil, overrides Initial with per-cell starting
	// codes (for continuing a prior run); its length must equal the table's
	// cell count.
	InitialByCell []domain.Codes

	// Workers bounds within-day parallelism. Zero means GOMAXPROCS.
	Workers int
}

// Results holds the six output series, day-major, with the same day and
// cell indexing as the input table, plus the final per-cell state for
// continuation by a later run.
type Results struct {
	Days []time.Time

	FFMC [][]float64
	DMC  [][]float64
	DC   [][]float64
	ISI  [][]float64
	BUI  [][]float64
	FWI  [][]float64

	FinalCodes []domain.Codes
}

// Run steps the recurrence over every day of the table in chronological
// order. Cancellation is checked between days only; a day in flight runs
// to its barrier.
func Run(ctx context.Context, tbl *align.Table, opts Options) (*Results, error) {
	if tbl == nil || len(tbl.Days) == 0 {
		return nil, fmt.Errorf("engine: empty aligned table")
	}
	cells := tbl.Cells
	if opts.InitialByCell != nil && len(opts.InitialByCell) != cells {
		return nil, fmt.Errorf("engine: %d initial codes for %d cells", len(opts.InitialByCell), cells)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cells {
		workers = cells
	}

	state := initialState(tbl, opts)
	res := newResults(tbl)

	for di := range tbl.Days {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := tbl.Records[di]
		month := tbl.Days[di].Month()

		// Within a day every cell is exclusively owned by one worker, so no
		// locking; the Wait below is the day barrier.
		g := new(errgroup.Group)
		for _, ch := range chunks(cells, workers) {
			lo, hi := ch.lo, ch.hi
			g.Go(func() error {
				for c := lo; c < hi; c++ {
					next, out := state[c].Step(row[c], month)
					state[c] = next
					res.FFMC[di][c] = out.FFMC
					res.DMC[di][c] = out.DMC
					res.DC[di][c] = out.DC
					res.ISI[di][c] = out.ISI
					res.BUI[di][c] = out.BUI
					res.FWI[di][c] = out.FWI
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	res.FinalCodes = state
	return res, nil
}

// initialState seeds the per-cell codes. Broadcast applies only to cells
// with at least one defined day anywhere in the range; a cell with no data
// at all stays NaN rather than reporting indices computed from pure
// defaults.
func initialState(tbl *align.Table, opts Options) []domain.Codes {
	initial := opts.Initial
	if initial == (domain.Codes{}) {
		initial = domain.DefaultCodes
	}

	state := make([]domain.Codes, tbl.Cells)
	for c := range state {
		if !cellHasData(tbl, c) {
			state[c] = domain.MissingCodes()
			continue
		}
		if opts.InitialByCell != nil {
			state[c] = opts.InitialByCell[c]
			continue
		}
		state[c] = initial
	}
	return state
}

func cellHasData(tbl *align.Table, c int) bool {
	for di := range tbl.Records {
		if tbl.Records[di][c].Defined() {
			return true
		}
	}
	return false
}

// span is a half-open cell range [lo, hi).
type span struct{ lo, hi int }

// chunks splits n cells into at most k near-equal spans.
func chunks(n, k int) []span {
	if k <= 0 {
		k = 1
	}
	out := make([]span, 0, k)
	size := (n + k - 1) / k
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		out = append(out, span{lo: lo, hi: hi})
	}
	return out
}

func newResults(tbl *align.Table) *Results {
	days := len(tbl.Days)
	alloc := func() [][]float64 {
		g := make([][]float64, days)
		for i := range g {
			g[i] = make([]float64, tbl.Cells)
		}
		return g
	}
	return &Results{
		Days: tbl.Days,
		FFMC: alloc(),
		DMC:  alloc(),
		DC:   alloc(),
		ISI:  alloc(),
		BUI:  alloc(),
		FWI:  alloc(),
	}
}
