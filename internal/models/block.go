package models

// BlockKind distinguishes the elements of an execution schedule.
type BlockKind string

const (
	KindStart   BlockKind = "start"
	KindEnd     BlockKind = "end"
	KindTask    BlockKind = "task"
	KindBreak   BlockKind = "break"
	KindMeasure BlockKind = "measures"
)

// BlockDescriptor is one resolved element of the execution schedule.
type BlockDescriptor struct {
	Ordinal int       `json:"ordinal"` // 0-based position in the schedule
	Kind    BlockKind `json:"kind"`
	Label   string    `json:"label"`

	// Task-block fields; zero-valued for markers, breaks and measures.
	Task            TaskType `json:"task,omitempty"`
	Cycle           int      `json:"cycle,omitempty"` // 1-based occurrence of this task type
	Level           int      `json:"level,omitempty"` // initial difficulty
	Adaptive        bool     `json:"adaptive,omitempty"`
	TimeCompression bool     `json:"timeCompression,omitempty"`
}

// Schedule is the ordered block sequence produced by the builder. It always
// begins with a Start marker and ends with an End marker.
type Schedule []BlockDescriptor

// TaskBlocks returns only the task-kind descriptors, in order.
func (s Schedule) TaskBlocks() []BlockDescriptor {
	var tasks []BlockDescriptor
	for _, b := range s {
		if b.Kind == KindTask {
			tasks = append(tasks, b)
		}
	}
	return tasks
}

// CountByTask returns the number of task blocks per task type.
func (s Schedule) CountByTask() map[TaskType]int {
	counts := make(map[TaskType]int)
	for _, b := range s {
		if b.Kind == KindTask {
			counts[b.Task]++
		}
	}
	return counts
}

// CountByKind returns the number of descriptors per kind.
func (s Schedule) CountByKind() map[BlockKind]int {
	counts := make(map[BlockKind]int)
	for _, b := range s {
		counts[b.Kind]++
	}
	return counts
}
