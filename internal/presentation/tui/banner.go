package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the startup banner for the serve command.
func PrintBanner(w io.Writer, profile termenv.Profile, addr string) {
	p1 := profile.String("  ┌─┐┬┌─┐┌─┐┬  ┬┬┌─┐┬ ┬").Foreground(profile.Color("#0DADEA"))
	p2 := profile.String("  ├─┘│├─┘├┤ └┐┌┘│├┤ │││").Foreground(profile.Color("#4CAF50"))
	p3 := profile.String("  ┴  ┴┴  └─┘ └┘ ┴└─┘└┴┘").Foreground(profile.Color("#FF9500"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, p1)
	fmt.Fprintln(w, p2)
	fmt.Fprintln(w, p3)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  listening on %s\n\n", profile.String(addr).Bold())
}
