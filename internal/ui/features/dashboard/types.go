package dashboard

import (
	"github.com/leapstack-labs/launchpad/pkg/core"
)

// Metric is a static KPI card.
type Metric struct {
	Label    string
	Value    string
	Progress int
}

// Metrics are the KPI cards at the top of the dashboard.
var Metrics = []Metric{
	{Label: "Conversion rate", Value: "8.2%", Progress: 82},
	{Label: "Activated users", Value: "1,240", Progress: 74},
	{Label: "Weekly MRR", Value: "$48,300", Progress: 67},
	{Label: "NPS", Value: "61", Progress: 61},
}

// StatusCount is the number of records in one status.
type StatusCount struct {
	Status any
	Count  int
}

// Data is the view model of the dashboard.
type Data struct {
	UserName    string
	Metrics     []Metric
	Connections []StatusCount
	Pipelines   []StatusCount
	// LatestRun is the pipeline that ran most recently, nil when none has.
	LatestRun *core.Pipeline
}

// BuildData counts records by status and finds the latest run.
func BuildData(userName string, conns []core.Connection, pipelines []core.Pipeline) Data {
	data := Data{UserName: userName, Metrics: Metrics}

	byConn := make(map[core.ConnectionStatus]int)
	for _, c := range conns {
		byConn[c.Status]++
	}
	for _, s := range []core.ConnectionStatus{core.ConnectionConnected, core.ConnectionTesting, core.ConnectionDisconnected} {
		data.Connections = append(data.Connections, StatusCount{Status: s, Count: byConn[s]})
	}

	byPipe := make(map[core.PipelineStatus]int)
	for i, p := range pipelines {
		byPipe[p.Status]++
		if p.LastRunAt == nil {
			continue
		}
		if data.LatestRun == nil || p.LastRunAt.After(*data.LatestRun.LastRunAt) {
			data.LatestRun = &pipelines[i]
		}
	}
	for _, s := range []core.PipelineStatus{core.PipelineIdle, core.PipelineRunning, core.PipelineSucceeded, core.PipelineFailed} {
		data.Pipelines = append(data.Pipelines, StatusCount{Status: s, Count: byPipe[s]})
	}

	return data
}
