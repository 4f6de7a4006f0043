package gateway

import (
	"github.com/opsline/opsline/internal/agent/tools"
)

var _ tools.Tool = (*CurrentTimeTool)(nil)
var _ tools.Tool = (*CalculatorTool)(nil)
var _ tools.Tool = (*WeatherTool)(nil)
var _ tools.Tool = (*CreateTaskTool)(nil)
var _ tools.Tool = (*ListTasksTool)(nil)
var _ tools.Tool = (*CompleteTaskTool)(nil)
var _ tools.Tool = (*SearchIncidentsTool)(nil)
var _ tools.Tool = (*IncidentAnalysisTool)(nil)
var _ tools.ArgumentValidator = (*CreateTaskTool)(nil)

// BuiltinRegistry assembles the registry the fallback model runs with. The
// task tools are skipped when no store is configured.
func BuiltinRegistry(cache Cache, taskStore TaskStore) *tools.Registry {
	registry := tools.NewRegistry()
	registry.Register(NewCurrentTimeTool())
	registry.Register(NewCalculatorTool())
	registry.Register(NewWeatherTool())
	registry.Register(NewSearchIncidentsTool(cache))
	registry.Register(NewIncidentAnalysisTool(cache))
	if taskStore != nil {
		registry.Register(NewCreateTaskTool(taskStore))
		registry.Register(NewListTasksTool(taskStore))
		registry.Register(NewCompleteTaskTool(taskStore))
	}
	return registry
}
