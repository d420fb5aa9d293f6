// Package errors provides the structured error type used across rpg-statblocks.
//
// Every error carries a Code, a message, an optional cause and free-form
// metadata. Codes survive wrapping, so the pipeline can decide at its
// boundary whether a failure ends a record and how to count it.
//
// # Basic Usage
//
// Creating errors:
//
//	err := errors.MissingRequiredField("entries")
//	err := errors.UnknownCodef("unknown size code %q", code)
//
// Adding metadata:
//
//	err := errors.ShapeMismatch("expected array").
//	    WithMeta("field", "ac").
//	    WithMeta("record", name)
//
// Wrapping errors keeps the original code:
//
//	if err := strategy.PreShape(rec, name); err != nil {
//	    return errors.Wrap(err, "pre-shape failed")
//	}
//
// # Record processing codes
//
// SHAPE_MISMATCH, UNKNOWN_CODE and MISSING_REQUIRED_FIELD abort the record
// they are raised for. MISSING_OPTIONAL_FIELD is only ever logged; use
// Code.AbortsRecord to tell them apart.
//
//	if errors.GetCode(err).AbortsRecord() {
//	    // count the record as failed
//	}
//
// # Validation Errors
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("output_dir", cfg.OutputDir, vb)
//	errors.ValidateMin("workers", cfg.Workers, 1, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
package errors
