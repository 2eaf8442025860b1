package bio

// AutomatonWidth is the number of cells in the Rule 30 row.
const AutomatonWidth = 32

// Rule is the Wolfram rule number applied each generation.
const Rule = 30

// Cluster is a contiguous run of active cells.
type Cluster struct {
	Start  int
	Length int
}

// AutomatonParams is the output of one automaton step.
type AutomatonParams struct {
	Density    float64 // fraction of active cells
	Complexity float64 // fraction of neighbouring cells that differ
	Triggers   []bool
	Clusters   []Cluster
}

type automaton struct {
	cur []bool
	nxt []bool
}

func newAutomaton(width int) automaton {
	a := automaton{
		cur: make([]bool, width),
		nxt: make([]bool, width),
	}
	a.cur[width/2] = true
	return a
}

// Cells returns a copy of the current row.
func (a *automaton) Cells() []bool {
	return append([]bool(nil), a.cur...)
}

func (a *automaton) step() AutomatonParams {
	w := len(a.cur)
	for i := 0; i < w; i++ {
		pattern := 0
		if a.cur[(i-1+w)%w] {
			pattern |= 4
		}
		if a.cur[i] {
			pattern |= 2
		}
		if a.cur[(i+1)%w] {
			pattern |= 1
		}
		a.nxt[i] = Rule>>pattern&1 == 1
	}
	a.cur, a.nxt = a.nxt, a.cur

	active, transitions := 0, 0
	var clusters []Cluster
	for i, on := range a.cur {
		if on {
			active++
			if i == 0 || !a.cur[i-1] {
				clusters = append(clusters, Cluster{Start: i})
			}
			clusters[len(clusters)-1].Length++
		}
		if on != a.cur[(i+1)%w] {
			transitions++
		}
	}

	return AutomatonParams{
		Density:    float64(active) / float64(w),
		Complexity: float64(transitions) / float64(w),
		Triggers:   a.Cells(),
		Clusters:   clusters,
	}
}
