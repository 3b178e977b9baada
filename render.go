package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/kamilpajak/humanorai/internal/history"
	"github.com/kamilpajak/humanorai/pkg/models"
	"github.com/mattn/go-isatty"
)

const barWidth = 24

func printResult(w io.Writer, r *models.PredictionResult) {
	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)

	_, _ = bold.Fprint(w, "Sonuç: ")
	_, _ = labelColor(r.Verdict.Label).Fprintln(w, strings.ToUpper(r.Verdict.Label))
	_, _ = dim.Fprintf(w, "Metin uzunluğu: %d", r.TextLength)
	if r.Verdict.Source == models.SourceVote {
		_, _ = dim.Fprint(w, " (majority vote)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	for _, m := range r.Models {
		fmt.Fprintf(w, "%s — AI %%%s / Human %%%s\n", m.Name, formatPct(m.AIPercent), formatPct(m.HumanPercent))
		fmt.Fprintf(w, "  %s\n", percentBar(m.AIPercent))
	}
}

func printHistory(stdout, stderr io.Writer, v history.View) {
	if v.Loading {
		fmt.Fprintln(stderr, "Yükleniyor...")
	}
	if v.Err != "" {
		_, _ = color.New(color.FgRed).Fprintln(stderr, v.Err)
	}
	if v.Empty() {
		fmt.Fprintln(stdout, "Henüz kayıt yok.")
		return
	}

	bold := color.New(color.Bold)
	dim := color.New(color.FgHiBlack)
	for i, e := range v.Items {
		if i > 0 {
			_, _ = dim.Fprintln(stdout, strings.Repeat("━", 50))
		}
		_, _ = dim.Fprintf(stdout, "%s — len: %d\n", formatTime(e.CreatedAt), e.TextLength)
		_, _ = bold.Fprint(stdout, "Sonuç: ")
		_, _ = labelColor(e.FinalLabel).Fprintln(stdout, strings.ToUpper(e.FinalLabel))
		fmt.Fprintf(stdout, "%s...\n", e.TextPreview)

		parts := make([]string, 0, len(models.HistoryModels))
		for _, name := range models.HistoryModels {
			val := "-"
			if p, ok := e.ModelAIPercent[name]; ok {
				val = formatPct(p)
			}
			parts = append(parts, fmt.Sprintf("%s AI%%: %s", name, val))
		}
		_, _ = dim.Fprintln(stdout, strings.Join(parts, " | "))
	}
}

func labelColor(label string) *color.Color {
	switch strings.ToLower(label) {
	case models.LabelAI:
		return color.New(color.Bold, color.FgRed)
	case models.LabelHuman:
		return color.New(color.Bold, color.FgGreen)
	default:
		return color.New(color.Bold, color.FgYellow)
	}
}

// percentBar draws p (0–100) as a fixed-width bar, clamping noisy values.
func percentBar(p float64) string {
	filled := int(p * barWidth / 100)
	filled = max(0, min(filled, barWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func formatPct(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// busyIndicator is a spinner that only runs on a terminal.
type busyIndicator struct {
	s *spinner.Spinner
}

func newBusyIndicator(f *os.File, suffix string) *busyIndicator {
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return &busyIndicator{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(f),
		spinner.WithSuffix(" "+suffix),
		spinner.WithHiddenCursor(true),
	)
	return &busyIndicator{s: s}
}

func (b *busyIndicator) Start() {
	if b.s != nil && !b.s.Active() {
		b.s.Start()
	}
}

func (b *busyIndicator) Stop() {
	if b.s != nil && b.s.Active() {
		b.s.Stop()
	}
}
