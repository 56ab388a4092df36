// Package validation checks request input and reports failures as
// *errors.AppError values with per-field details.
//
// Struct tags use go-playground/validator:
//
//	type SubtitleRequest struct {
//	    Units  []subtitle.Unit `json:"units" validate:"required"`
//	    Policy string          `json:"policy" validate:"omitempty,oneof=reject skip"`
//	}
//	err := validation.Validate(req)
//
// Checks that depend on runtime values use the collecting Validator:
//
//	err := validation.New().
//	    OneOf("granularity", g, []string{"segment", "word"}).
//	    Language("language", lang).
//	    Err()
package validation
