package pipeline

import (
	"time"

	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

// Stage is a point in the per-record state machine.
type Stage string

// Record stages in the order a record passes through them.
const (
	StageLoaded                Stage = "loaded"
	StagePreShaped             Stage = "pre_shaped"
	StageFrontMatterSerialized Stage = "front_matter_serialized"
	StageFlattened             Stage = "flattened"
	StageStatblockSerialized   Stage = "statblock_serialized"
	StageTextReplaced          Stage = "text_replaced"
	StageHandedOff             Stage = "handed_off"
	StageFailed                Stage = "failed"
)

var _ core.Entity = (*Record)(nil)

// Record is one input entity and the display name it is processed under.
// A worker owns the record's tree for the whole run.
type Record struct {
	Index    int
	Name     string
	Category string
	Tree     *tree.Object
}

// GetID returns the display name
func (r *Record) GetID() string {
	return r.Name
}

// GetType returns the category
func (r *Record) GetType() string {
	return r.Category
}

// Result describes what happened to one record.
type Result struct {
	Index int
	Name  string
	// Stage is the last stage reached, or StageFailed.
	Stage Stage
	Err   error
	// Skipped is set when the record matched the ledger or the output
	// file already held the rendered document.
	Skipped bool
	// Superseded is set when a later record resolved to the same name.
	Superseded bool
	// Canceled is set when the record was never issued.
	Canceled     bool
	AssetMissing bool
	OutputPath   string
}

// Summary totals one category run. Every record is counted in exactly one
// of Processed, Failed, Skipped, Superseded and Canceled.
type Summary struct {
	BatchID    string
	Category   string
	Total      int
	Processed  int
	Failed     int
	Skipped    int
	Superseded int
	Canceled   int
	Duration   time.Duration
	Results    []Result
}

// RunInput defines the input for converting one category document
type RunInput struct {
	Category string
	// Document is the raw JSON input: an array of records, or an object
	// with exactly one array-valued field.
	Document []byte
	// Workers bounds concurrent records. Zero uses the orchestrator default.
	Workers int
	// Force ignores the ledger.
	Force bool
}

// RunOutput defines the output of a run
type RunOutput struct {
	Summary *Summary
}
