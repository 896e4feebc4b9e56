// Package validate holds the wiring validators: each one cross-references
// the view layer, the controller descriptor map, and (for broadcasts) the
// server-side channel/job sources, and emits findings. Findings are data,
// never errors: a clean run returns an empty list.
package validate

// Kind categorizes a finding.
type Kind string

const (
	MissingController            Kind = "missing-controller"
	MissingTarget                Kind = "missing-target"
	TargetOutOfScope             Kind = "target-out-of-scope"
	MissingValue                 Kind = "missing-value"
	ValueWrongFormat             Kind = "value-wrong-format"
	MissingOutlet                Kind = "missing-outlet"
	OutletWrongAttr              Kind = "outlet-wrong-attr"
	InvalidOutletSelector        Kind = "invalid-outlet-selector"
	OutletTargetNotFound         Kind = "outlet-target-not-found"
	MissingSelector              Kind = "missing-selector"
	SelectorOutOfScope           Kind = "selector-out-of-scope"
	MissingMethod                Kind = "missing-method"
	MissingActionScope           Kind = "missing-action-scope"
	BroadcastMissingFrontendFile Kind = "broadcast-missing-frontend-file"
	BroadcastMissingType         Kind = "broadcast-missing-type"
	BroadcastMissingHandler      Kind = "broadcast-missing-handler"
	ForbiddenColorClass          Kind = "forbidden-color-class"
	ArchitectureViolation        Kind = "architecture-violation"
)

// Kinds is the canonical report ordering.
var Kinds = []Kind{
	MissingController,
	MissingTarget,
	TargetOutOfScope,
	MissingValue,
	ValueWrongFormat,
	MissingOutlet,
	OutletWrongAttr,
	InvalidOutletSelector,
	OutletTargetNotFound,
	MissingSelector,
	SelectorOutOfScope,
	MissingMethod,
	MissingActionScope,
	BroadcastMissingFrontendFile,
	BroadcastMissingType,
	BroadcastMissingHandler,
	ForbiddenColorClass,
	ArchitectureViolation,
}

// Finding is one validation result. Pure output value; a validation run
// produces an ordered list, never mutated after creation.
type Finding struct {
	Kind       Kind   `json:"kind"`
	File       string `json:"file"`
	Line       int    `json:"line,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}
