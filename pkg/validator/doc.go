// Package validator provides composable validation rules.
//
// A Rule defers its check until Apply runs it; Apply returns ValidationErrors
// describing every failed rule so API clients get all problems at once:
//
//	err := validator.Apply(
//	    validator.ValidEmail("email", in.Email),
//	    validator.MaxLen("name", in.Name, 100),
//	)
//	if ve := validator.ExtractValidationErrors(err); ve != nil {
//	    // ve.Fields() -> map[field][]message
//	}
//
// Password builds the rule set for a PasswordPolicy.
package validator
