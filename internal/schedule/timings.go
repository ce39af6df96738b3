package schedule

import (
	"github.com/brodie-neuro/WAND-practice-and-fatigue-induction/internal/models"
)

// Timings are the presentation parameters for one block, in seconds.
type Timings struct {
	Display float64
	ISI     float64
}

// Per-block reductions and caps for time compression, in seconds.
const (
	displayReductionPerBlock = 0.03
	isiReductionPerBlock     = 0.05
	maxDisplayReduction      = 0.15
	maxISIReductionSpatial   = 0.225
	maxISIReductionDual      = 0.15
)

// ProgressiveTimings computes block-dependent display and ISI durations.
// Reductions accumulate with the 0-based cumulative block index for the task
// and apply only when the plan has time compression enabled; Sequential
// blocks always keep their base timings.
func ProgressiveTimings(task models.TaskType, plan TaskPlan, blockIndex int) Timings {
	t := Timings{Display: plan.DisplayDuration, ISI: plan.ISI}
	if !plan.TimeCompression || task == models.Sequential {
		return t
	}

	maxISI := maxISIReductionSpatial
	if task == models.Dual {
		maxISI = maxISIReductionDual
	}

	displayReduction := float64(blockIndex) * displayReductionPerBlock
	if displayReduction > maxDisplayReduction {
		displayReduction = maxDisplayReduction
	}
	isiReduction := float64(blockIndex) * isiReductionPerBlock
	if isiReduction > maxISI {
		isiReduction = maxISI
	}

	t.Display -= displayReduction
	t.ISI -= isiReduction
	return t
}

// SubBlockTrials derives the trial count for one sub-block from the plan's
// target duration, the sub-block split and the block's timings.
func SubBlockTrials(plan TaskPlan, subBlocks int, t Timings) int {
	if subBlocks < 1 {
		subBlocks = 1
	}
	perTrial := t.Display + t.ISI
	if perTrial <= 0 || plan.TargetDuration <= 0 {
		return plan.TrialsPerBlock
	}
	return int(plan.TargetDuration / float64(subBlocks) / perTrial)
}
