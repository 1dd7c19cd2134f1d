package instrumentation

// Operation types for Google API metrics.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationDelete = "delete"
)

// Import pipeline stages for import_rows_total.
const (
	StageLoaded  = "loaded"
	StageMerged  = "merged"
	StageDropped = "dropped"
	StageBuilt   = "built"
	StageSkipped = "skipped"
)

// labelOther replaces label values outside a known set.
const labelOther = "other"

var knownStages = map[string]bool{
	StageLoaded:  true,
	StageMerged:  true,
	StageDropped: true,
	StageBuilt:   true,
	StageSkipped: true,
}

var knownOperations = map[string]bool{
	OperationList:   true,
	OperationGet:    true,
	OperationCreate: true,
	OperationDelete: true,
}

// boundedLabel returns value when it is in allowed and "other" otherwise,
// keeping label cardinality fixed.
func boundedLabel(value string, allowed map[string]bool) string {
	if allowed[value] {
		return value
	}
	return labelOther
}
