package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	` __   __ _                  _`,
	` \ \ / /(_)__ __ __ _  _ _ (_) _  _  _ __`,
	`  \ V / | |\ V // _' || '_|| || || || '  \`,
	`   \_/  |_| \_/ \__,_||_|  |_| \_,_||_|_|_|`,
}

var bannerColors = []string{"#34d399", "#10b981", "#059669", "#047857"}

// PrintBanner writes the vivarium banner to w using the color profile of
// the terminal. Non-terminals get plain text.
func PrintBanner(w io.Writer) {
	printBanner(w, termenv.ColorProfile())
}

func printBanner(w io.Writer, p termenv.Profile) {
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, p.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}
