package report

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/pable/go-epa-compare/internal/chart"
	"github.com/pable/go-epa-compare/internal/model"
)

// DefaultBarWidth is the plot width in cells.
const DefaultBarWidth = 40

const (
	barRune = '█'
	refRune = '┆'
)

var cTitle = color.New(color.Bold)

// PrintChart draws a horizontal bar chart in team colors. The league-average
// marker, when present, is drawn as a dotted column.
func PrintChart(w io.Writer, c *chart.Chart, width int) {
	if width <= 0 {
		width = DefaultBarWidth
	}
	cTitle.Fprintln(w, c.Title)

	lo, hi := 0.0, 0.0
	for _, b := range c.Bars {
		if model.IsNoData(b.Value) {
			continue
		}
		lo, hi = math.Min(lo, b.Value), math.Max(hi, b.Value)
	}
	if c.HasReference {
		lo, hi = math.Min(lo, c.Reference), math.Max(hi, c.Reference)
	}
	if hi == lo {
		hi = lo + 1
	}
	col := func(v float64) int {
		return int(math.Round((v - lo) / (hi - lo) * float64(width)))
	}

	nameW := 0
	for _, b := range c.Bars {
		if n := utf8.RuneCountInString(b.Player); n > nameW {
			nameW = n
		}
	}

	ref := -1
	if c.HasReference {
		ref = col(c.Reference)
	}
	for _, b := range c.Bars {
		cells := make([]rune, width+1)
		for i := range cells {
			cells[i] = ' '
		}
		if !model.IsNoData(b.Value) {
			z, e := col(0), col(b.Value)
			if e < z {
				z, e = e, z
			}
			for i := z; i < e; i++ {
				cells[i] = barRune
			}
		}
		if ref >= 0 && cells[ref] == ' ' {
			cells[ref] = refRune
		}
		pad := strings.Repeat(" ", nameW-utf8.RuneCountInString(b.Player))
		fmt.Fprintf(w, "  %s%s  %s %s\n", b.Player, pad, paint(cells, teamColor(b.Color)), b.Label)
	}
	if c.HasReference {
		fmt.Fprintf(w, "  %s  %c league avg %.2f\n", strings.Repeat(" ", nameW), refRune, c.Reference)
	}
	fmt.Fprintln(w)
}

// PrintCharts draws every chart in order.
func PrintCharts(w io.Writer, charts []*chart.Chart, width int) {
	for _, c := range charts {
		PrintChart(w, c, width)
	}
}

// paint colors each run of bar cells.
func paint(cells []rune, c *color.Color) string {
	var sb strings.Builder
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && (cells[j] == barRune) == (cells[i] == barRune) {
			j++
		}
		run := string(cells[i:j])
		if cells[i] == barRune {
			run = c.Sprint(run)
		}
		sb.WriteString(run)
		i = j
	}
	return sb.String()
}

func teamColor(hex string) *color.Color {
	r, g, b, ok := parseHex(hex)
	if !ok {
		r, g, b, _ = parseHex(chart.DefaultColor)
	}
	return color.RGB(r, g, b)
}

func parseHex(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF), true
}
