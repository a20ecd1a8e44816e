package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/MikeSquared-Agency/timemachine/internal/timeline"
)

const scenarioWidth = 60

var timeNow = time.Now

func writeList(w io.Writer, list []timeline.Timeline, now time.Time) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No timelines yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tEVENTS\tSCENARIO")
	for _, tl := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n",
			tl.ID,
			humanize.RelTime(tl.CreatedAt, now, "ago", "from now"),
			len(tl.Events),
			truncate(tl.OriginalScenario, scenarioWidth),
		)
	}
	return tw.Flush()
}

func writeTimeline(w io.Writer, tl *timeline.Timeline) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", tl.OriginalScenario)
	fmt.Fprintf(&b, "id %s, created %s\n\n", tl.ID, tl.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "%s\n", tl.Summary)

	if len(tl.HistoricalContext) > 0 {
		b.WriteString("\nHistorical context:\n")
		for _, fact := range tl.HistoricalContext {
			fmt.Fprintf(&b, "  - %s\n", fact)
		}
	}

	b.WriteString("\nTimeline:\n")
	for _, ev := range tl.Events {
		fmt.Fprintf(&b, "  %s  %s [%s]\n", ev.Date, ev.Event, ev.Probability)
		fmt.Fprintf(&b, "        %s\n", ev.Impact)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTimelineJSON(w io.Writer, tl *timeline.Timeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tl)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
