package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"rtcdiag/internal/core/domain"
)

// writeReport prints a human readable summary of analysis.
func writeReport(w io.Writer, analysis *domain.Analysis) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	summary := analysis.Summary

	fmt.Fprintf(tw, "Format:\t%s\n", analysis.Format)
	fmt.Fprintf(tw, "Overall score:\t%d/100\n", summary.OverallScore)
	if analysis.Session != nil {
		fmt.Fprintf(tw, "Peer connections:\t%d\n", len(analysis.Session.PeerConnections))
	}
	fmt.Fprintf(tw, "Tracks:\t%d\n", len(summary.TrackSummaries))

	fmt.Fprintln(tw)
	if len(summary.Issues) == 0 {
		fmt.Fprintln(tw, "No issues found.")
	} else {
		fmt.Fprintln(tw, "Top issues:")
		for i, issue := range summary.Issues {
			fmt.Fprintf(tw, "  %d.\t%s\t%s\t%s %s\t%s\n",
				i+1, issue.PeerConnectionID, issue.TrackID, issue.Kind, issue.Direction, issue.Detail)
		}
	}

	for _, ts := range summary.TrackSummaries {
		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "%s %s (%s %s)\tscore %d\n", ts.PeerConnectionID, ts.TrackID, ts.Kind, ts.Direction, ts.Score)
		for _, name := range domain.AllMetrics {
			ms, ok := ts.Metrics[name]
			if !ok || ms.Average == nil {
				continue
			}
			fmt.Fprintf(tw, "  %s\tavg %s\tp50 %s\tp95 %s\n", name, formatValue(ms.Average), formatValue(ms.P50), formatValue(ms.P95))
		}
	}
	return tw.Flush()
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
