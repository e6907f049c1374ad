package bench

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// WriteTable prints one row per result, durations in milliseconds.
//
//	ENGINE  WORKLOAD    SIZE   INSERT(ms)  SEARCH(ms)  DELETE(ms)  TOTAL(ms)  HEIGHT  LEAVES  LEN   VALID
//	avl     sequential  10000  1.203       0.051       0.688       1.942      13      2500    5000  true
func WriteTable(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ENGINE\tWORKLOAD\tSIZE\tINSERT(ms)\tSEARCH(ms)\tDELETE(ms)\tTOTAL(ms)\tHEIGHT\tLEAVES\tLEN\tVALID")
	for _, res := range results {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%t\n",
			res.Engine,
			res.Workload,
			res.Size,
			millis(res.Insert),
			millis(res.Search),
			millis(res.Delete),
			millis(res.Total),
			res.Height,
			res.LeafCount,
			res.Len,
			res.Valid,
		)
	}
	return tw.Flush()
}

func millis(d time.Duration) string {
	return fmt.Sprintf("%.3f", float64(d)/float64(time.Millisecond))
}
