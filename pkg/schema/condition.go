package schema

import "strings"

// Operator names the comparison a Condition applies.
type Operator string

const (
	OperatorEqual       Operator = "equal"
	OperatorNotEqual    Operator = "not_equal"
	OperatorContains    Operator = "contains"
	OperatorNotContains Operator = "not_contains"
	OperatorStarts      Operator = "starts"
	OperatorEnds        Operator = "ends"
	OperatorGreater     Operator = "greater"
	OperatorLess        Operator = "less"
)

// Operators lists the supported operators in display order.
var Operators = []Operator{
	OperatorEqual,
	OperatorNotEqual,
	OperatorContains,
	OperatorNotContains,
	OperatorStarts,
	OperatorEnds,
	OperatorGreater,
	OperatorLess,
}

// Known reports whether o is a supported operator.
func (o Operator) Known() bool {
	for _, candidate := range Operators {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOperator normalises case and surrounding whitespace. Unknown names are
// returned as-is so they survive a round trip.
func ParseOperator(raw string) Operator {
	return Operator(strings.ToLower(strings.TrimSpace(raw)))
}

// Combinator joins a clause to the result accumulated by the clauses before
// it.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

// Known reports whether c is "and" or "or".
func (c Combinator) Known() bool {
	return c == CombinatorAnd || c == CombinatorOr
}

// ParseCombinator normalises case and surrounding whitespace.
func ParseCombinator(raw string) Combinator {
	return Combinator(strings.ToLower(strings.TrimSpace(raw)))
}

// Condition is one visibility clause. Field references another field by name
// and Condition is the combinator applied against the running result; the
// first clause's combinator is ignored.
type Condition struct {
	Field     string     `json:"field"`
	Operator  Operator   `json:"operator"`
	Value     string     `json:"value"`
	Condition Combinator `json:"condition"`
}

// ConditionKey names an attribute of a Condition for UpdateCondition.
type ConditionKey string

const (
	ConditionKeyField     ConditionKey = "field"
	ConditionKeyOperator  ConditionKey = "operator"
	ConditionKeyValue     ConditionKey = "value"
	ConditionKeyCondition ConditionKey = "condition"
)

// NewCondition returns the default clause appended by AddCondition: it
// targets the first field of the schema (or nothing when the schema is
// empty) with an equality test against the empty string.
func NewCondition(fields []Field) Condition {
	target := ""
	if len(fields) > 0 {
		target = fields[0].Name
	}
	return Condition{
		Field:     target,
		Operator:  OperatorEqual,
		Value:     "",
		Condition: CombinatorAnd,
	}
}

// AddCondition appends a default clause to the field.
func (f Field) AddCondition(fields []Field) Field {
	out := f.Clone()
	out.Conditions = append(out.Conditions, NewCondition(fields))
	return out
}

// UpdateCondition replaces one attribute of the clause at index. Out of range
// indices and unknown keys leave the field unchanged.
func (f Field) UpdateCondition(index int, key ConditionKey, value string) Field {
	out := f.Clone()
	if index < 0 || index >= len(out.Conditions) {
		return out
	}
	clause := out.Conditions[index]
	switch key {
	case ConditionKeyField:
		clause.Field = value
	case ConditionKeyOperator:
		clause.Operator = ParseOperator(value)
	case ConditionKeyValue:
		clause.Value = value
	case ConditionKeyCondition:
		clause.Condition = ParseCombinator(value)
	default:
		return out
	}
	out.Conditions[index] = clause
	return out
}

// DeleteCondition removes the clause at index. Removing the last clause
// resets Conditions to nil.
func (f Field) DeleteCondition(index int) Field {
	out := f.Clone()
	if index < 0 || index >= len(out.Conditions) {
		return out
	}
	out.Conditions = append(out.Conditions[:index], out.Conditions[index+1:]...)
	if len(out.Conditions) == 0 {
		out.Conditions = nil
	}
	return out
}
