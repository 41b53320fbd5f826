// Package validator validates request and domain structs.
//
// Business code depends on the Validator interface. V10Validator wraps
// go-playground/validator with English messages, snake_case field keys and
// a few custom tags: password, identifier (email or E.164 phone) and enum
// tags registered through WithEnum.
package validator
