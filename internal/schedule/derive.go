package schedule

// DeriveSchedules reduces a literal block order to break and measure
// positions, expressed as the count of task blocks preceding each event.
// Events placed before the first task block map to position 1. This is a
// reporting helper only; custom orders execute literally and are never
// folded back onto cycle boundaries.
func DeriveSchedules(order []string) (breaks, measures []int) {
	breakSet := make(map[int]bool)
	measureSet := make(map[int]bool)
	taskBlocks := 0

	for _, tok := range order {
		switch tok {
		case TokenSeq, TokenSpa, TokenDual:
			taskBlocks++
		}

		pos := taskBlocks
		if pos < 1 {
			pos = 1
		}
		switch tok {
		case TokenBreak:
			breakSet[pos] = true
		case TokenMeasures:
			measureSet[pos] = true
		}
	}

	return sortedKeys(breakSet), sortedKeys(measureSet)
}

// DefaultSchedules spreads breaks and measures evenly across the task-block
// ordinals when no explicit positions were configured.
func DefaultSchedules(numBreaks, numMeasures, totalBlocks int) (breaks, measures []int) {
	if totalBlocks < 1 {
		return nil, nil
	}

	if numBreaks == 1 {
		breaks = []int{clampPos(totalBlocks/2, totalBlocks)}
	} else if numBreaks > 1 {
		set := make(map[int]bool)
		step := float64(totalBlocks) / float64(numBreaks+1)
		for i := 0; i < numBreaks; i++ {
			set[clampPos(int(step*float64(i+1)), totalBlocks)] = true
		}
		breaks = sortedKeys(set)
	}

	if numMeasures >= totalBlocks && numMeasures > 0 {
		for i := 1; i <= totalBlocks; i++ {
			measures = append(measures, i)
		}
	} else if numMeasures > 0 {
		set := make(map[int]bool)
		step := float64(totalBlocks) / float64(numMeasures+1)
		for i := 0; i < numMeasures; i++ {
			set[clampPos(int(step*float64(i+1))+1, totalBlocks)] = true
		}
		measures = sortedKeys(set)
	}

	return breaks, measures
}

func clampPos(p, max int) int {
	if p < 1 {
		return 1
	}
	if p > max {
		return max
	}
	return p
}

func sortedKeys(set map[int]bool) []int {
	var out []int
	for k := range set {
		out = append(out, k)
	}
	// insertion sort; the lists hold a handful of positions
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
