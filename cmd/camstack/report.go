package main

import (
	"io"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/raspiroman/camstack/pkg/service"
	"github.com/raspiroman/camstack/pkg/types"
)

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleNoOp    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleFatal   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

const reportTemplate = `{{bold "Deployment run"}}: {{.Status}}

{{range .Outcomes -}}
{{symbol .Status}} {{printf "%-26s" .StepName}} {{status .Status}}{{if .Detail}}  {{.Detail}}{{end}}
{{end -}}
{{with .AbortCause}}
Aborted at {{bold .StepName}}:
{{.Detail}}
{{end}}`

// statusSymbol is the one-character marker in front of each step line.
func statusSymbol(s types.StepStatus) string {
	switch s {
	case types.StatusSuccess:
		return styleSuccess.Render("✓")
	case types.StatusNoOp:
		return styleNoOp.Render("-")
	case types.StatusFailed:
		return styleFailed.Render("!")
	case types.StatusFatalFailed:
		return styleFatal.Render("✗")
	}
	return "?"
}

func renderStepStatus(s types.StepStatus) string {
	switch s {
	case types.StatusSuccess:
		return styleSuccess.Render("success")
	case types.StatusNoOp:
		return styleNoOp.Render("no-op")
	case types.StatusFailed:
		return styleFailed.Render("failed")
	case types.StatusFatalFailed:
		return styleFatal.Render("FATAL")
	}
	return string(s)
}

func renderServiceStatus(s service.Status) string {
	switch s {
	case service.StatusRunning:
		return styleSuccess.Render("running")
	case service.StatusStopped:
		return styleFatal.Render("stopped")
	}
	return styleNoOp.Render("unknown")
}

// renderReport writes the human-readable run summary: one line per
// executed step, and the aborting step's diagnostic when the run failed.
func renderReport(w io.Writer, report *types.RunReport) error {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"bold":   formatBold,
		"symbol": statusSymbol,
		"status": renderStepStatus,
	}).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, report)
}
