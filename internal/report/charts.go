package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"chatsynth/internal/dataset"
	"chatsynth/internal/logging"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// maxBarWidth caps the bar column of count charts.
const maxBarWidth = 40

// durationBin is the width in minutes of the session duration histogram bins.
const durationBin = 5

// Chart is one text chart: a title over a table.
type Chart struct {
	Name    string // file name without extension
	Title   string
	Headers []string
	Rows    [][]string
}

// Render returns the chart as plain text.
func (c Chart) Render() string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(c.Headers...).
		Rows(c.Rows...)

	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteString("\n\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

// countChart builds a label/count/bar chart. Bars scale to the largest count.
func countChart(name, title, labelHeader string, labels []string, counts []int) Chart {
	peak := 0
	for _, n := range counts {
		if n > peak {
			peak = n
		}
	}
	rows := make([][]string, len(labels))
	for i, label := range labels {
		width := 0
		if peak > 0 {
			width = counts[i] * maxBarWidth / peak
		}
		if counts[i] > 0 && width == 0 {
			width = 1
		}
		rows[i] = []string{label, strconv.Itoa(counts[i]), strings.Repeat("█", width)}
	}
	return Chart{
		Name:    name,
		Title:   title,
		Headers: []string{labelHeader, "count", ""},
		Rows:    rows,
	}
}

// BuildCharts computes the six distribution charts of a dataset.
func BuildCharts(sessions []dataset.Session, messages []dataset.Message) []Chart {
	roles := []string{dataset.RoleUser, dataset.RoleAssistant}
	roleCounts := make([]int, len(roles))
	msgTopic := make([]int, len(dataset.Topics))
	for _, m := range messages {
		if m.Role == dataset.RoleUser {
			roleCounts[0]++
		} else {
			roleCounts[1]++
		}
		if i := topicIndex(m.Topic); i >= 0 {
			msgTopic[i]++
		}
	}

	var durLabels []string
	for lo := dataset.MinDuration; lo < dataset.MaxDuration; lo += durationBin {
		durLabels = append(durLabels, fmt.Sprintf("%d-%d", lo, lo+durationBin-1))
	}
	durCounts := make([]int, len(durLabels))

	var lenLabels []string
	for n := dataset.MinMessages; n < dataset.MaxMessages; n++ {
		lenLabels = append(lenLabels, strconv.Itoa(n))
	}
	lenCounts := make([]int, len(lenLabels))

	sessTopic := make([]int, len(dataset.Topics))
	durationByLength := map[int][]int{}

	for _, s := range sessions {
		if bin := (s.DurationMinutes - dataset.MinDuration) / durationBin; bin >= 0 && bin < len(durCounts) {
			durCounts[bin]++
		}
		if i := s.MessageCount - dataset.MinMessages; i >= 0 && i < len(lenCounts) {
			lenCounts[i]++
		}
		if i := topicIndex(s.Topic); i >= 0 {
			sessTopic[i]++
		}
		durationByLength[s.MessageCount] = append(durationByLength[s.MessageCount], s.DurationMinutes)
	}

	return []Chart{
		countChart("role_distribution", "Messages by role", "role", roles, roleCounts),
		countChart("topic_distribution", "Messages by topic", "topic", dataset.Topics, msgTopic),
		countChart("session_duration", "Session duration (minutes)", "minutes", durLabels, durCounts),
		countChart("messages_per_session", "Messages per session", "messages", lenLabels, lenCounts),
		countChart("sessions_by_topic", "Sessions by topic", "topic", dataset.Topics, sessTopic),
		durationVsMessages(durationByLength),
	}
}

// durationVsMessages tabulates mean, min and max duration per message count.
func durationVsMessages(byLength map[int][]int) Chart {
	lengths := make([]int, 0, len(byLength))
	for n := range byLength {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)

	rows := make([][]string, 0, len(lengths))
	for _, n := range lengths {
		durations := byLength[n]
		lo, hi, sum := durations[0], durations[0], 0
		for _, d := range durations {
			sum += d
			lo = min(lo, d)
			hi = max(hi, d)
		}
		mean := float64(sum) / float64(len(durations))
		rows = append(rows, []string{
			strconv.Itoa(n),
			strconv.Itoa(len(durations)),
			strconv.FormatFloat(mean, 'f', 1, 64),
			strconv.Itoa(lo),
			strconv.Itoa(hi),
		})
	}
	return Chart{
		Name:    "duration_vs_messages",
		Title:   "Session duration vs. message count",
		Headers: []string{"messages", "sessions", "mean minutes", "min", "max"},
		Rows:    rows,
	}
}

func topicIndex(topic string) int {
	for i, t := range dataset.Topics {
		if t == topic {
			return i
		}
	}
	return -1
}

// RenderCharts writes every chart of the dataset to dir as <name>.txt and
// returns the written paths in chart order.
func RenderCharts(dir string, sessions []dataset.Session, messages []dataset.Message) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryReport, "RenderCharts")
	defer timer.Stop()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory %s: %w", dir, err)
	}

	charts := BuildCharts(sessions, messages)
	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(dir, c.Name+".txt")
		if err := os.WriteFile(path, []byte(c.Render()), 0644); err != nil {
			return paths, fmt.Errorf("failed to write chart %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	logging.Report("Rendered %d charts into %s", len(paths), dir)
	return paths, nil
}
