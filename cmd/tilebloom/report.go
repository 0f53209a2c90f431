package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"text/template"
	"time"

	"github.com/plus3/tilebloom/capture"
	"github.com/plus3/tilebloom/ecs"
)

type Report struct {
	Mode        string
	WallTime    time.Duration
	Frames      uint64
	Elapsed     float64
	Screenshots int

	Update  *ecs.SchedulerStats
	Draw    *ecs.SchedulerStats
	Storage *ecs.StorageStats
	Mem     runtime.MemStats
}

func newReport(mode string, wall time.Duration, systems, draws *ecs.Scheduler, storage *ecs.Storage, writer *capture.Writer) *Report {
	r := &Report{
		Mode:        mode,
		WallTime:    wall,
		Frames:      systems.Frames(),
		Elapsed:     systems.Elapsed(),
		Screenshots: writer.Written(),
		Update:      systems.GetStats(),
		Storage:     storage.CollectStats(),
	}
	if draws != nil {
		r.Draw = draws.GetStats()
	}
	runtime.ReadMemStats(&r.Mem)
	return r
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# tilebloom Run Report

## Run
- **Mode:** {{.Mode}}
- **Wall Time:** {{.WallTime}}
- **Frames:** {{.Frames}}
- **Simulated Time:** {{printf "%.2f" .Elapsed}}s
- **Screenshots Written:** {{.Screenshots}}

## Storage
- **Entities:** {{.Storage.TotalEntityCount}}
- **Archetypes:** {{.Storage.ArchetypeCount}}
{{- range .Storage.ArchetypeBreakdown}}
  - 0x{{printf "%08X" .ID}}: {{.EntityCount}} x {{join .ComponentTypes}}
{{- end}}
- **Singletons:** {{join .Storage.SingletonTypes}}

## Update Systems
{{template "systems" .Update}}
{{- if .Draw}}
## Draw Systems
{{template "systems" .Draw}}
{{- end}}
## Memory
- Total Alloc: {{mb .Mem.TotalAlloc}} MB
- Num GC:      {{.Mem.NumGC}}
{{define "systems"}}
{{- range .Systems}}
- **{{.Name}}:** {{.ExecutionCount}} runs, avg {{.AvgDuration}}, max {{.MaxDuration}}
{{- end}}
{{end}}`

	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"join": func(parts []string) string {
			return strings.Join(parts, ", ")
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
