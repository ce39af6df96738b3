package models

// TaskType identifies one of the three N-back task variants.
type TaskType string

const (
	Sequential TaskType = "sequential"
	Spatial    TaskType = "spatial"
	Dual       TaskType = "dual"
)

// Response is the participant's answer to a single trial.
type Response string

const (
	ResponseMatch    Response = "match"
	ResponseNonMatch Response = "non-match"
	// ResponseLapse means no response was given before the deadline.
	ResponseLapse Response = "lapse"
)

// TrialRecord is one presented stimulus and the participant's reaction to it.
// Records are immutable once created and owned by the block in progress.
type TrialRecord struct {
	Trial           int      `json:"trial"` // 1-based index within the block
	Stimulus        string   `json:"stimulus"`
	IsTarget        bool     `json:"isTarget"`
	Response        Response `json:"response"`
	Correct         bool     `json:"correct"`
	ReactionTime    *float64 `json:"reactionTime"` // seconds; nil on lapse
	AfterDistractor bool     `json:"afterDistractor"`
}

// WindowSummary holds metrics for a subset of a block's trials, used for the
// pre/post distractor comparison.
type WindowSummary struct {
	Trials          int     `json:"trials"`
	Accuracy        float64 `json:"accuracy"`
	AvgReactionTime float64 `json:"avgReactionTime"`
	APrime          float64 `json:"aPrime"`
}

// DistractorSummary compares performance in the trials immediately before and
// after each distractor. Applicable is false when the block contained no
// distractor-flagged trials.
type DistractorSummary struct {
	Applicable bool           `json:"applicable"`
	Pre        *WindowSummary `json:"pre,omitempty"`
	Post       *WindowSummary `json:"post,omitempty"`
	// AccuracyDelta is post minus pre accuracy, in percentage points.
	AccuracyDelta float64 `json:"accuracyDelta"`
}

// BlockSummary is the scored outcome of one task block. It is derived solely
// from the block's TrialRecords and never mutated after creation.
type BlockSummary struct {
	BlockNumber int      `json:"blockNumber"`
	Task        TaskType `json:"task"`
	Level       int      `json:"level"`

	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Lapses    int `json:"lapses"`

	Accuracy        float64 `json:"accuracy"` // percent, 0-100
	AvgReactionTime float64 `json:"avgReactionTime"`

	Hits              int     `json:"hits"`
	Misses            int     `json:"misses"`
	FalseAlarms       int     `json:"falseAlarms"`
	CorrectRejections int     `json:"correctRejections"`
	HitRate           float64 `json:"hitRate"` // log-linear corrected
	FARate            float64 `json:"faRate"`  // log-linear corrected
	DPrime            float64 `json:"dPrime"`
	APrime            float64 `json:"aPrime"`
	Criterion         float64 `json:"criterion"`

	Distractor *DistractorSummary `json:"distractor,omitempty"`

	// Incomplete marks a block whose trial stream could not be scored.
	Incomplete bool `json:"incomplete,omitempty"`
}
