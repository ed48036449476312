package visibility

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/schema"
)

// Clauses folds a clause list left to right. The first clause seeds the
// result; each later clause is combined with the running result using its own
// combinator (anything other than "or" is treated as "and").
//
// A clause whose target name is not declared by the schema holds. An unknown
// operator never holds.
type Clauses struct{}

// Eval implements Evaluator.
func (Clauses) Eval(conditions []schema.Condition, ctx Context) bool {
	if len(conditions) == 0 {
		return true
	}
	result := EvalClause(conditions[0], ctx)
	for _, clause := range conditions[1:] {
		next := EvalClause(clause, ctx)
		if clause.Condition == schema.CombinatorOr {
			result = result || next
		} else {
			result = result && next
		}
	}
	return result
}

// EvalClause evaluates a single clause against ctx.
func EvalClause(clause schema.Condition, ctx Context) bool {
	if !ctx.Declares(clause.Field) {
		return true
	}
	target := coerceString(ctx.Values[clause.Field])
	return Compare(clause.Operator, target, clause.Value)
}

// Compare applies op to target and operand. greater and less compare
// numerically; an operand that does not parse as a number makes them false.
func Compare(op schema.Operator, target, operand string) bool {
	switch op {
	case schema.OperatorEqual:
		return target == operand
	case schema.OperatorNotEqual:
		return target != operand
	case schema.OperatorContains:
		return strings.Contains(target, operand)
	case schema.OperatorNotContains:
		return !strings.Contains(target, operand)
	case schema.OperatorStarts:
		return strings.HasPrefix(target, operand)
	case schema.OperatorEnds:
		return strings.HasSuffix(target, operand)
	case schema.OperatorGreater:
		return coerceNumber(target) > coerceNumber(operand)
	case schema.OperatorLess:
		return coerceNumber(target) < coerceNumber(operand)
	default:
		return false
	}
}

// coerceNumber returns NaN for anything that is not a number so ordered
// comparisons involving it are false.
func coerceNumber(raw string) float64 {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func coerceString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, coerceString(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(value)
	}
}
