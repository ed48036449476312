package validation

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-formbuilder/pkg/codec"
	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// IssueCode classifies a lint finding.
type IssueCode string

const (
	CodeImport               IssueCode = "import"
	CodeEmptyName            IssueCode = "empty_name"
	CodeDuplicateName        IssueCode = "duplicate_name"
	CodeUnknownType          IssueCode = "unknown_type"
	CodeDanglingReference    IssueCode = "dangling_reference"
	CodeSelfReference        IssueCode = "self_reference"
	CodeUnknownOperator      IssueCode = "unknown_operator"
	CodeUnknownCombinator    IssueCode = "unknown_combinator"
	CodeDuplicateOptionValue IssueCode = "duplicate_option_value"
)

// SchemaIssue is one finding. Path is a JSON pointer into the wire schema
// (for example /2/conditions/0/field) and Index the position of the field,
// or -1 for document level problems.
type SchemaIssue struct {
	Code    IssueCode `json:"code"`
	Path    string    `json:"path,omitempty"`
	Field   string    `json:"field,omitempty"`
	Index   int       `json:"index"`
	Message string    `json:"message"`
}

// SchemaValidationResult captures lint outcomes for builder previews. None of
// the issues prevent a schema from being saved or evaluated.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

// Lint inspects fields for problems the visibility engine tolerates silently:
// names that are empty or shared, clauses pointing at missing fields or at
// their own field, operators and combinators outside the known sets, and
// option lists with repeated values.
func Lint(fields []schema.Field) SchemaValidationResult {
	var issues []SchemaIssue

	firstByName := make(map[string]int, len(fields))
	for i, field := range fields {
		if field.Name == "" {
			issues = append(issues, issue(CodeEmptyName, i, field, pointer(i, "name"),
				"field has no name; conditions cannot reference it"))
		} else if first, seen := firstByName[field.Name]; seen {
			issues = append(issues, issue(CodeDuplicateName, i, field, pointer(i, "name"),
				fmt.Sprintf("name %q is already used by field %d; conditions resolve to the first one", field.Name, first)))
		} else {
			firstByName[field.Name] = i
		}
		if !field.Type.Known() {
			issues = append(issues, issue(CodeUnknownType, i, field, pointer(i, "type"),
				fmt.Sprintf("type %q is not a known field type; it is kept as is", field.Type)))
		}
	}

	for i, field := range fields {
		issues = append(issues, lintConditions(i, field, firstByName)...)
		issues = append(issues, lintOptions(i, field)...)
	}

	return SchemaValidationResult{Valid: len(issues) == 0, Issues: issues}
}

func lintConditions(index int, field schema.Field, names map[string]int) []SchemaIssue {
	var issues []SchemaIssue
	for c, clause := range field.Conditions {
		if clause.Field != "" && clause.Field == field.Name {
			issues = append(issues, issue(CodeSelfReference, index, field, pointer(index, "conditions", c, "field"),
				"condition references its own field"))
		} else if _, ok := names[clause.Field]; !ok {
			issues = append(issues, issue(CodeDanglingReference, index, field, pointer(index, "conditions", c, "field"),
				fmt.Sprintf("condition references unknown field %q and always holds", clause.Field)))
		}
		if !clause.Operator.Known() {
			issues = append(issues, issue(CodeUnknownOperator, index, field, pointer(index, "conditions", c, "operator"),
				fmt.Sprintf("operator %q is not supported and never matches", clause.Operator)))
		}
		if c > 0 && !clause.Condition.Known() {
			issues = append(issues, issue(CodeUnknownCombinator, index, field, pointer(index, "conditions", c, "condition"),
				fmt.Sprintf("combinator %q is treated as and", clause.Condition)))
		}
	}
	return issues
}

func lintOptions(index int, field schema.Field) []SchemaIssue {
	var issues []SchemaIssue
	seen := map[string]int{}
	for o, option := range field.Options() {
		if first, ok := seen[option.Value]; ok {
			issues = append(issues, issue(CodeDuplicateOptionValue, index, field, pointer(index, "values", o, "value"),
				fmt.Sprintf("option value %q repeats option %d", option.Value, first)))
			continue
		}
		seen[option.Value] = o
	}
	return issues
}

// ValidateDocument decodes raw (JSON or YAML) and lints the result. A document
// that cannot be decoded yields a single import issue.
func ValidateDocument(raw []byte) SchemaValidationResult {
	fields, err := codec.DecodeAny(raw, nil)
	if err != nil {
		return SchemaValidationResult{Valid: false, Issues: []SchemaIssue{issueFromError(err)}}
	}
	return Lint(fields)
}

func issueFromError(err error) SchemaIssue {
	var importErr *codec.ImportError
	if errors.As(err, &importErr) {
		out := SchemaIssue{Code: CodeImport, Index: importErr.Index, Message: err.Error()}
		if importErr.Index >= 0 {
			if importErr.Key != "" {
				out.Path = pointer(importErr.Index, importErr.Key)
			} else {
				out.Path = pointer(importErr.Index)
			}
		}
		return out
	}
	return SchemaIssue{Code: CodeImport, Index: -1, Message: err.Error()}
}

func issue(code IssueCode, index int, field schema.Field, path, message string) SchemaIssue {
	return SchemaIssue{Code: code, Path: path, Field: field.Name, Index: index, Message: message}
}

func pointer(segments ...any) string {
	var out string
	for _, segment := range segments {
		out += fmt.Sprintf("/%v", segment)
	}
	return out
}
