package sweep

import (
	"fmt"
	"io"
	"strconv"

	"github.com/hamed0406/safewarmer/internal/probe"
)

// FormatLine renders one request as "<seconds> <status>::<url>", seconds
// left-aligned in 10 columns and status right-aligned in 8.
func FormatLine(r probe.Result) string {
	secs := strconv.FormatFloat(r.Elapsed.Seconds(), 'f', -1, 64)
	return fmt.Sprintf("%-10s %8s::%8s", secs, strconv.Itoa(r.StatusCode), r.URL)
}

// WriteBlock prints one line per result followed by a blank separator line.
func WriteBlock(w io.Writer, results []probe.Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(w, FormatLine(r)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
