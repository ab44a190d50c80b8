package components

import (
	"html/template"
	"time"

	"github.com/leapstack-labs/launchpad/internal/ui/resources"
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// TimeLayout is how run times are shown.
const TimeLayout = "Jan 2, 2006 15:04 MST"

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"tone":       Tone,
		"engineTone": EngineTone,
		"when":       When,
		"static":     resources.StaticPath,
		"datastar":   func() string { return DatastarScript },
	}
}

// Tone maps a status to the badge colour class.
func Tone(status any) string {
	switch s := status.(type) {
	case core.ConnectionStatus:
		switch s {
		case core.ConnectionConnected:
			return "green"
		case core.ConnectionTesting:
			return "yellow"
		case core.ConnectionDisconnected:
			return "red"
		}
	case core.PipelineStatus:
		switch s {
		case core.PipelineIdle:
			return "gray"
		case core.PipelineRunning:
			return "yellow"
		case core.PipelineSucceeded:
			return "green"
		case core.PipelineFailed:
			return "red"
		}
	}
	return "gray"
}

// EngineTone maps a database engine to its badge colour class.
func EngineTone(e core.Engine) string {
	switch e {
	case core.EnginePostgreSQL:
		return "indigo"
	case core.EngineMySQL:
		return "blue"
	case core.EngineMariaDB:
		return "cyan"
	case core.EngineSQLServer:
		return "grape"
	case core.EngineOracle:
		return "orange"
	case core.EngineSQLite:
		return "teal"
	case core.EngineCockroachDB:
		return "lime"
	default:
		return "gray"
	}
}

// When formats an optional timestamp, "Never" when unset.
func When(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return t.Local().Format(TimeLayout)
}
