// Package localtools serves the built-in tools that run inside the gateway.
package localtools

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"toolgate/internal/domain"
	"toolgate/internal/infra/telemetry"
)

type handler func(ctx context.Context, params map[string]any) (any, error)

type variant struct {
	descriptor domain.ToolDescriptor
	run        handler
}

type Provider struct {
	logger   *zap.Logger
	variants map[string]variant
}

func NewProvider(logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Provider{logger: logger.Named("localtools")}
	p.variants = map[string]variant{
		"calculator":       {descriptor: calculatorDescriptor, run: runCalculator},
		"text-analyzer":    {descriptor: textAnalyzerDescriptor, run: runTextAnalyzer},
		"weather-forecast": {descriptor: weatherForecastDescriptor, run: runWeatherForecast},
	}
	return p
}

// ListTools returns the static local catalog sorted by name.
func (p *Provider) ListTools() []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, 0, len(p.variants))
	for _, v := range p.variants {
		out = append(out, v.descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p *Provider) Execute(ctx context.Context, name string, params map[string]any) (any, error) {
	v, ok := p.variants[name]
	if !ok {
		return nil, fmt.Errorf("local tool %q: %w", name, domain.ErrToolNotFound)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}
	result, err := v.run(ctx, params)
	if err != nil {
		telemetry.LoggerWithRequest(ctx, p.logger).Warn("local tool failed",
			telemetry.ToolField(name),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

var calculatorDescriptor = domain.ToolDescriptor{
	Name:        "calculator",
	Description: "Performs basic mathematical operations",
	Parameters: []domain.ToolParameter{
		{Name: "operation", Type: "string", Description: "Operation to perform (add, subtract, multiply, divide)", Required: true},
		{Name: "a", Type: "number", Description: "First operand", Required: true},
		{Name: "b", Type: "number", Description: "Second operand", Required: true},
	},
	Returns: &domain.ToolReturn{Type: "object", Description: "Operation result"},
}

var textAnalyzerDescriptor = domain.ToolDescriptor{
	Name:        "text-analyzer",
	Description: "Analyzes text and returns information about it",
	Parameters: []domain.ToolParameter{
		{Name: "text", Type: "string", Description: "Text to analyze", Required: true},
	},
	Returns: &domain.ToolReturn{Type: "object", Description: "Text analysis"},
}

var weatherForecastDescriptor = domain.ToolDescriptor{
	Name:        "weather-forecast",
	Description: "Returns weather forecast for a city",
	Parameters: []domain.ToolParameter{
		{Name: "city", Type: "string", Description: "City name", Required: true},
	},
	Returns: &domain.ToolReturn{Type: "object", Description: "Weather forecast"},
}

var arithmetic = map[string]func(a, b float64) (float64, error){
	"add":      func(a, b float64) (float64, error) { return a + b, nil },
	"subtract": func(a, b float64) (float64, error) { return a - b, nil },
	"multiply": func(a, b float64) (float64, error) { return a * b, nil },
	"divide": func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, fmt.Errorf("%w: division by zero", domain.ErrInvalidParams)
		}
		return a / b, nil
	},
}

func runCalculator(_ context.Context, params map[string]any) (any, error) {
	operation, err := stringParam(params, "operation")
	if err != nil {
		return nil, err
	}
	op, ok := arithmetic[operation]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported operation %q", domain.ErrInvalidParams, operation)
	}
	a, err := numberParam(params, "a")
	if err != nil {
		return nil, err
	}
	b, err := numberParam(params, "b")
	if err != nil {
		return nil, err
	}
	result, err := op(a, b)
	if err != nil {
		return nil, err
	}
	return map[string]any{"result": result, "operation": operation}, nil
}

func runTextAnalyzer(_ context.Context, params map[string]any) (any, error) {
	text, err := stringParam(params, "text")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"length":    len([]rune(text)),
		"wordCount": len(strings.Fields(text)),
		"uppercase": strings.ToUpper(text),
	}, nil
}

func runWeatherForecast(_ context.Context, params map[string]any) (any, error) {
	city, err := stringParam(params, "city")
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"city":        city,
		"temperature": 25.5,
		"condition":   "Sunny",
		"humidity":    70,
	}, nil
}

func stringParam(params map[string]any, key string) (string, error) {
	value, ok := params[key].(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string", domain.ErrInvalidParams, key)
	}
	return value, nil
}

// numberParam accepts JSON numbers and numeric strings.
func numberParam(params map[string]any, key string) (float64, error) {
	switch v := params[key].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidParams, key)
		}
		return parsed, nil
	case nil:
		return 0, fmt.Errorf("%w: %q is required", domain.ErrInvalidParams, key)
	default:
		return 0, fmt.Errorf("%w: %q must be a number", domain.ErrInvalidParams, key)
	}
}

var _ domain.LocalProvider = (*Provider)(nil)
