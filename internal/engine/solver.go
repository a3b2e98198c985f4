package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/models"
)

// DefaultNodeBudget caps tentative placements per component when no budget is configured.
const DefaultNodeBudget int64 = 2_000_000

// deadlineCheckInterval is how many nodes pass between context checks.
const deadlineCheckInterval = 256

// Config bounds a scheduling run.
type Config struct {
	// NodeBudget caps tentative placements per independent component.
	NodeBudget int64
	// TimeBudget is a wall-clock deadline for the whole run; zero disables it.
	TimeBudget time.Duration
	// Workers bounds how many components are searched concurrently.
	Workers int
}

// DefaultConfig returns the budget used when callers pass a zero Config.
func DefaultConfig() Config {
	return Config{
		NodeBudget: DefaultNodeBudget,
		TimeBudget: 10 * time.Second,
		Workers:    runtime.GOMAXPROCS(0),
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.NodeBudget <= 0 {
		c.NodeBudget = def.NodeBudget
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	return c
}

// UnitState tracks one demand unit through the search.
type UnitState int

const (
	Unassigned UnitState = iota
	TentativelyAssigned
	Committed
)

func (s UnitState) String() string {
	switch s {
	case TentativelyAssigned:
		return "TentativelyAssigned"
	case Committed:
		return "Committed"
	default:
		return "Unassigned"
	}
}

// Schedule compiles the catalog, searches for a complete assignment and,
// when one is found, re-checks it with Validate before returning it.
// Infeasible and budget-exceeded runs are results, not errors; only
// structurally invalid input or a rejected schedule produce an error.
func Schedule(ctx context.Context, catalog models.Catalog, cfg Config) (*models.ScheduleResult, error) {
	started := time.Now()
	problem, err := Compile(catalog)
	if err != nil {
		return nil, err
	}
	result := problem.Solve(ctx, cfg)
	result.Stats.Duration = time.Since(started)

	if result.Status != models.RunStatusSolved {
		return result, nil
	}
	violations, err := Validate(result.Entries, catalog)
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		result.Violations = violations
		return result, fmt.Errorf("%w: %d violation(s), first: %s", ErrRejectedSchedule, len(violations), violations[0].Message)
	}
	return result, nil
}

type outcome int

const (
	outcomeSolved outcome = iota
	outcomeExhausted
	outcomeBudget
)

type placement struct {
	pair    *pair
	cell    int
	teacher int
}

type componentResult struct {
	outcome    outcome
	pairs      []*pair
	placements []placement
	nodes      int64
	backtracks int64
	maxDepth   int
}

// Solve searches every independent component of the problem and merges
// the outcomes. Output does not depend on cfg.Workers.
func (p *Problem) Solve(ctx context.Context, cfg Config) *models.ScheduleResult {
	cfg = cfg.withDefaults()
	if cfg.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TimeBudget)
		defer cancel()
	}

	components := partition(p.pairs)
	results := make([]componentResult, len(components))

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, comp := range components {
		i, comp := i, comp
		g.Go(func() error {
			members := make([]*pair, len(comp))
			for k, idx := range comp {
				members[k] = p.pairs[idx]
			}
			results[i] = p.searchComponent(ctx, members, cfg.NodeBudget)
			return nil
		})
	}
	_ = g.Wait()

	return p.merge(components, results)
}

func (p *Problem) merge(components [][]int, results []componentResult) *models.ScheduleResult {
	res := &models.ScheduleResult{
		Status:      models.RunStatusSolved,
		Entries:     []models.ScheduleEntry{},
		Unsatisfied: p.NoEligibleTeacher(),
		Violations:  []models.Violation{},
		Stats: models.SearchStats{
			Components: len(components),
			Units:      p.units,
		},
	}
	infeasible := len(p.blocked) > 0
	overBudget := false

	for _, r := range results {
		res.Stats.Nodes += r.nodes
		res.Stats.Backtracks += r.backtracks
		if r.maxDepth > res.Stats.MaxDepth {
			res.Stats.MaxDepth = r.maxDepth
		}

		placed := make(map[*pair]int, len(r.pairs))
		for _, pl := range r.placements {
			placed[pl.pair]++
			res.Entries = append(res.Entries, models.ScheduleEntry{
				SubjectID: pl.pair.subjectID,
				TeacherID: p.teacherIDs[pl.teacher],
				GroupID:   pl.pair.groupID,
				Day:       CellAt(pl.cell).Day,
				Start:     models.At(CellAt(pl.cell).Hour),
				End:       models.At(CellAt(pl.cell).Hour + 1),
			})
		}

		var reason models.UnsatisfiedReason
		switch r.outcome {
		case outcomeSolved:
			continue
		case outcomeExhausted:
			infeasible = true
			reason = models.ReasonSearchExhausted
		case outcomeBudget:
			overBudget = true
			reason = models.ReasonBudgetExceeded
		}
		for _, pr := range r.pairs {
			if missing := pr.need - placed[pr]; missing > 0 {
				res.Unsatisfied = append(res.Unsatisfied, models.Unsatisfied{
					GroupID:          pr.groupID,
					SubjectID:        pr.subjectID,
					UnitsStillNeeded: missing,
					Reason:           reason,
				})
			}
		}
	}

	switch {
	case infeasible:
		res.Status = models.RunStatusInfeasible
	case overBudget:
		res.Status = models.RunStatusBudgetExceeded
	}

	sort.Slice(res.Unsatisfied, func(i, j int) bool {
		a, b := res.Unsatisfied[i], res.Unsatisfied[j]
		if a.GroupID != b.GroupID {
			return a.GroupID < b.GroupID
		}
		return a.SubjectID < b.SubjectID
	})
	SortEntries(res.Entries)
	return res
}

// SortEntries orders entries by day, start, group id, subject id and teacher id.
func SortEntries(entries []models.ScheduleEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Day != b.Day:
			return a.Day < b.Day
		case a.Start != b.Start:
			return a.Start < b.Start
		case a.GroupID != b.GroupID:
			return a.GroupID < b.GroupID
		case a.SubjectID != b.SubjectID:
			return a.SubjectID < b.SubjectID
		default:
			return a.TeacherID < b.TeacherID
		}
	})
}

type candidate struct {
	cell int
	k    int
}

type frame struct {
	pair     int
	cands    []candidate
	next     int
	state    UnitState
	prevLast int
}

// search owns the occupancy state of one component.
type search struct {
	ctx    context.Context
	budget int64

	pairs       []*pair
	windowSize  []int
	remaining   []int
	last        []int
	free        []CellSet
	freeCount   []int
	teacherBusy map[int]*CellSet
	groupBusy   map[int]*CellSet

	groupPairs   [][]int
	soloPairs    [][]int
	depth, total int
	stack        []frame
	best         []placement

	nodes, backtracks int64
	maxDepth          int
}

func (p *Problem) searchComponent(ctx context.Context, members []*pair, budget int64) componentResult {
	s := &search{
		ctx:         ctx,
		budget:      budget,
		pairs:       members,
		windowSize:  make([]int, len(members)),
		remaining:   make([]int, len(members)),
		last:        make([]int, len(members)),
		free:        make([]CellSet, len(members)),
		freeCount:   make([]int, len(members)),
		teacherBusy: map[int]*CellSet{},
		groupBusy:   map[int]*CellSet{},
	}
	byGroup := map[int]int{}
	bySolo := map[int]int{}
	for q, pr := range members {
		s.windowSize[q] = p.windows[pr.group].Count()
		s.remaining[q] = pr.need
		s.last[q] = -1
		s.total += pr.need
		if _, ok := s.groupBusy[pr.group]; !ok {
			s.groupBusy[pr.group] = &CellSet{}
		}
		for _, t := range pr.teachers {
			if _, ok := s.teacherBusy[t]; !ok {
				s.teacherBusy[t] = &CellSet{}
			}
		}
		gi, ok := byGroup[pr.group]
		if !ok {
			gi = len(s.groupPairs)
			byGroup[pr.group] = gi
			s.groupPairs = append(s.groupPairs, nil)
		}
		s.groupPairs[gi] = append(s.groupPairs[gi], q)
		if len(pr.teachers) == 1 {
			t := pr.teachers[0]
			si, ok := bySolo[t]
			if !ok {
				si = len(s.soloPairs)
				bySolo[t] = si
				s.soloPairs = append(s.soloPairs, nil)
			}
			s.soloPairs[si] = append(s.soloPairs[si], q)
		}
	}

	out := s.run()
	res := componentResult{
		outcome:    out,
		pairs:      members,
		nodes:      s.nodes,
		backtracks: s.backtracks,
		maxDepth:   s.maxDepth,
	}
	if out == outcomeSolved {
		res.placements = s.current()
	} else {
		res.placements = s.best
	}
	return res
}

func (s *search) run() outcome {
	if !s.consistent() {
		return outcomeExhausted
	}
	if s.depth == s.total {
		return outcomeSolved
	}
	s.push(s.selectPair())

	for len(s.stack) > 0 {
		top := &s.stack[len(s.stack)-1]
		if top.state != Unassigned {
			s.undo(top)
			s.backtracks++
		}
		if top.next >= len(top.cands) {
			s.stack = s.stack[:len(s.stack)-1]
			continue
		}
		if s.outOfBudget() {
			return outcomeBudget
		}

		cand := top.cands[top.next]
		top.next++
		s.nodes++
		s.apply(top, cand)
		if !s.consistent() {
			continue
		}
		top.state = Committed
		s.record()
		if s.depth == s.total {
			return outcomeSolved
		}
		s.push(s.selectPair())
	}
	return outcomeExhausted
}

func (s *search) outOfBudget() bool {
	if s.budget > 0 && s.nodes >= s.budget {
		return true
	}
	if s.nodes%deadlineCheckInterval == 0 && s.ctx.Err() != nil {
		return true
	}
	return false
}

// freeCells is the set of cells the next unit of pair q may still take:
// a cell some eligible teacher has free, the group has free, and that
// comes after the pair's last placed unit.
func (s *search) freeCells(q int) CellSet {
	pr := s.pairs[q]
	var f CellSet
	for k, t := range pr.teachers {
		f = f.Or(pr.base[k].AndNot(*s.teacherBusy[t]))
	}
	return f.AndNot(*s.groupBusy[pr.group]).After(s.last[q])
}

// consistent runs forward checking over the whole component.
func (s *search) consistent() bool {
	for q := range s.pairs {
		if s.remaining[q] == 0 {
			continue
		}
		s.free[q] = s.freeCells(q)
		s.freeCount[q] = s.free[q].Count()
		if s.freeCount[q] < s.remaining[q] {
			return false
		}
	}
	return s.capacityHolds(s.groupPairs) && s.capacityHolds(s.soloPairs)
}

// capacityHolds checks that each bucket of pairs competing for the same
// exclusive resource has enough distinct cells for its combined demand.
func (s *search) capacityHolds(buckets [][]int) bool {
	for _, bucket := range buckets {
		if len(bucket) < 2 {
			continue
		}
		var union CellSet
		need := 0
		for _, q := range bucket {
			if s.remaining[q] == 0 {
				continue
			}
			union = union.Or(s.free[q])
			need += s.remaining[q]
		}
		if need > 0 && union.Count() < need {
			return false
		}
	}
	return true
}

// selectPair picks the open pair with the least slack, then fewer eligible
// teachers, then the narrower shift window; pair order breaks the rest.
func (s *search) selectPair() int {
	best := -1
	for q := range s.pairs {
		if s.remaining[q] == 0 {
			continue
		}
		if best < 0 || s.tighter(q, best) {
			best = q
		}
	}
	return best
}

func (s *search) tighter(a, b int) bool {
	sa, sb := s.freeCount[a]-s.remaining[a], s.freeCount[b]-s.remaining[b]
	if sa != sb {
		return sa < sb
	}
	ta, tb := len(s.pairs[a].teachers), len(s.pairs[b].teachers)
	if ta != tb {
		return ta < tb
	}
	return s.windowSize[a] < s.windowSize[b]
}

func (s *search) push(q int) {
	pr := s.pairs[q]
	var cands []candidate
	s.free[q].Each(func(cell int) {
		for k, t := range pr.teachers {
			if pr.base[k].Has(cell) && !s.teacherBusy[t].Has(cell) {
				cands = append(cands, candidate{cell: cell, k: k})
			}
		}
	})
	s.stack = append(s.stack, frame{pair: q, cands: cands})
}

func (s *search) apply(f *frame, c candidate) {
	pr := s.pairs[f.pair]
	s.teacherBusy[pr.teachers[c.k]].Add(c.cell)
	s.groupBusy[pr.group].Add(c.cell)
	f.prevLast = s.last[f.pair]
	s.last[f.pair] = c.cell
	s.remaining[f.pair]--
	s.depth++
	f.state = TentativelyAssigned
}

func (s *search) undo(f *frame) {
	c := f.cands[f.next-1]
	pr := s.pairs[f.pair]
	s.teacherBusy[pr.teachers[c.k]].Remove(c.cell)
	s.groupBusy[pr.group].Remove(c.cell)
	s.last[f.pair] = f.prevLast
	s.remaining[f.pair]++
	s.depth--
	f.state = Unassigned
}

func (s *search) record() {
	if s.depth <= s.maxDepth {
		return
	}
	s.maxDepth = s.depth
	s.best = s.current()
}

func (s *search) current() []placement {
	out := make([]placement, 0, s.depth)
	for _, f := range s.stack {
		if f.state != Committed {
			continue
		}
		c := f.cands[f.next-1]
		pr := s.pairs[f.pair]
		out = append(out, placement{pair: pr, cell: c.cell, teacher: pr.teachers[c.k]})
	}
	return out
}
