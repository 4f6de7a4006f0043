package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CalculatorTool implements tools.Tool for basic arithmetic. It handles one
// binary operation per call, which is all the model needs for incident math
// like resolution-rate percentages.
type CalculatorTool struct{}

func NewCalculatorTool() *CalculatorTool { return &CalculatorTool{} }

func (t *CalculatorTool) Name() string { return "calculator" }

func (t *CalculatorTool) Description() string {
	return "Evaluate a simple arithmetic expression with two operands, e.g. \"12 / 48\" or \"3 * 7\"."
}

func (t *CalculatorTool) ParametersSchema() string {
	return `{"type":"object","properties":{"expression":{"type":"string","description":"Two numbers joined by +, -, * or /."}},"required":["expression"]}`
}

func (t *CalculatorTool) Execute(_ context.Context, rawArgs json.RawMessage) (string, error) {
	var args struct {
		Expression string `json:"expression"`
	}
	if err := strictDecodeArgs(rawArgs, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	result, err := evaluate(args.Expression)
	if err != nil {
		return "", err
	}
	if result == math.Trunc(result) {
		return strconv.FormatFloat(result, 'f', 0, 64), nil
	}
	return strconv.FormatFloat(result, 'f', 4, 64), nil
}

func evaluate(expression string) (float64, error) {
	expression = strings.TrimSpace(expression)
	for _, operator := range []string{"+", "-", "*", "/"} {
		// Split on the last occurrence so leading minus signs survive.
		idx := strings.LastIndex(expression[1:], operator)
		if idx < 0 {
			continue
		}
		idx++
		left, errLeft := strconv.ParseFloat(strings.TrimSpace(expression[:idx]), 64)
		right, errRight := strconv.ParseFloat(strings.TrimSpace(expression[idx+1:]), 64)
		if errLeft != nil || errRight != nil {
			continue
		}
		switch operator {
		case "+":
			return left + right, nil
		case "-":
			return left - right, nil
		case "*":
			return left * right, nil
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return left / right, nil
		}
	}
	if value, err := strconv.ParseFloat(expression, 64); err == nil {
		return value, nil
	}
	return 0, fmt.Errorf("cannot evaluate %q: expected two numbers joined by +, -, * or /", expression)
}
