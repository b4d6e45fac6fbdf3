package entity

// ValidationResult is produced once per extraction by the consistency checks.
// Confidence measures arithmetic plausibility, not field coverage.
type ValidationResult struct {
	Warnings    []string              `json:"warnings"`
	Corrections map[FieldName]float64 `json:"corrections"`
	IsValid     bool                  `json:"is_valid"`
	Confidence  int                   `json:"confidence"`
}
