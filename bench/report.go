package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// WriteMarkdown 以 Markdown 表格输出结果。
func WriteMarkdown(w io.Writer, results []Result) error {
	if _, err := fmt.Fprintln(w, "| Benchmark | Iterations | Mean | Median | P95 | P99 | Min | Max | StdDev | Allocs/op | B/op |"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "|---|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|"); err != nil {
		return err
	}
	for _, r := range results {
		_, err := fmt.Fprintf(w, "| %s | %d | %s | %s | %s | %s | %s | %s | %s | %.1f | %.0f |\n",
			r.Name, r.Iterations,
			formatDuration(r.Mean), formatDuration(r.Median),
			formatDuration(r.P95), formatDuration(r.P99),
			formatDuration(r.Min), formatDuration(r.Max),
			formatDuration(r.StdDev),
			r.AllocsPerOp, r.BytesPerOp)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON 以缩进 JSON 数组输出结果，耗时单位为纳秒。
func WriteJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []Result{}
	}
	return enc.Encode(results)
}

// formatDuration 按量级选择单位，保留 3 位有效数字。
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.3gµs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.3gms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.3gs", d.Seconds())
	}
}
