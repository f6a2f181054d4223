package clinic

import (
	"context"
	"slices"

	"github.com/rs/zerolog"
)

// MaxFilledIDRange bounds how many ids a filled report may span. Wider
// ranges fall back to the existing doctors.
const MaxFilledIDRange = 100_000

type StatusCount struct {
	Status Status
	Count  int
}

// DoctorRankRow holds a doctor's four status counts. Counts[0] is the
// dominant status; the other three are not sorted.
type DoctorRankRow struct {
	DoctorID int
	Counts   [4]StatusCount
}

func (r DoctorRankRow) Dominant() Status {
	return r.Counts[0].Status
}

// StatusAggregator produces the per-doctor status ranking report.
type StatusAggregator struct {
	repo        Repository
	fillIDRange bool
	logger      zerolog.Logger
}

// NewStatusAggregator builds the aggregator. With fillIDRange the report
// covers every id between the smallest and largest doctor id, including ids
// no doctor has.
func NewStatusAggregator(repo Repository, fillIDRange bool, logger zerolog.Logger) *StatusAggregator {
	return &StatusAggregator{
		repo:        repo,
		fillIDRange: fillIDRange,
		logger:      logger.With().Str("component", "report").Logger(),
	}
}

// RankByDoctor counts appointments per status for every doctor, in ascending
// doctor id order. A failed per-status count is logged and leaves that column
// at zero.
func (a *StatusAggregator) RankByDoctor(ctx context.Context) ([]DoctorRankRow, error) {
	ids, err := a.repo.ListDoctorIDs(ctx)
	if err != nil {
		return nil, persistence("list doctors", err)
	}
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	if a.fillIDRange && len(ids) > 0 {
		lo, hi := ids[0], ids[len(ids)-1]
		if hi-lo < MaxFilledIDRange {
			ids = idRange(lo, hi)
		} else {
			a.logger.Warn().
				Int("min_id", lo).
				Int("max_id", hi).
				Int("limit", MaxFilledIDRange).
				Msg("doctor id range too wide to fill, reporting existing doctors only")
		}
	}

	counts := make(map[int]*[4]int, len(ids))
	for _, id := range ids {
		counts[id] = &[4]int{}
	}

	for i, status := range Statuses {
		perDoctor, err := a.repo.CountAppointmentsByStatus(ctx, status)
		if err != nil {
			a.logger.Warn().Str("status", string(status)).Err(err).Msg("table search error, column left at zero")
			continue
		}
		for id, n := range perDoctor {
			if c, ok := counts[id]; ok {
				c[i] = n
			}
		}
	}

	rows := make([]DoctorRankRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, rankRow(id, *counts[id]))
	}
	return rows, nil
}

// rankRow swaps the largest count into the first slot. Ties go to the
// earliest status in counting order.
func rankRow(doctorID int, counts [4]int) DoctorRankRow {
	row := DoctorRankRow{DoctorID: doctorID}
	for i, status := range Statuses {
		row.Counts[i] = StatusCount{Status: status, Count: counts[i]}
	}

	maxIdx := 0
	for j := 1; j < len(row.Counts); j++ {
		if row.Counts[j].Count > row.Counts[maxIdx].Count {
			maxIdx = j
		}
	}
	row.Counts[0], row.Counts[maxIdx] = row.Counts[maxIdx], row.Counts[0]

	return row
}

func idRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for id := lo; id <= hi; id++ {
		out = append(out, id)
	}
	return out
}
