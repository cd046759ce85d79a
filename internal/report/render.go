package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fortuna/mlbh2h/internal/league"
	"github.com/fortuna/mlbh2h/internal/reconciliation"
)

// Format selects the output encoding.
type Format string

const (
	FormatPretty Format = "pretty"
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPretty, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (use pretty, csv or json)", s)
	}
}

const (
	playerWidth = 18
	teamWidth   = 10
	posWidth    = 4
	// fits season totals up to 99999.99
	fanPtsWidth = 9
)

// columnWidths are the fixed pretty-table widths of each stat column.
var columnWidths = map[string]int{
	"B.AB": 5, "B.R": 4, "B.H": 4, "B.1B": 5, "B.2B": 5, "B.3B": 5, "B.HR": 5,
	"B.RBI": 6, "B.SAC": 6, "B.SB": 5, "B.CS": 5, "B.BB": 5, "B.IBB": 6,
	"B.HBP": 6, "B.K": 4, "B.GIDP": 7, "B.TB": 5,
	"P.IP": 7, "P.W": 4, "P.L": 4, "P.CG": 5, "P.SHO": 6, "P.SV": 5,
	"P.OUT": 6, "P.H": 4, "P.ER": 5, "P.HR": 5, "P.BB": 5, "P.IBB": 6,
	"P.HBP": 6, "P.K": 4, "P.SB": 5, "P.GIDP": 7, "P.TB": 5,
}

// HeaderString renders a header line.
func HeaderString(headers []string, format Format) string {
	if format == FormatCSV {
		return csvLine(headers)
	}

	var b strings.Builder
	for _, h := range headers {
		switch h {
		case "Player":
			fmt.Fprintf(&b, "%-*s", playerWidth, h)
		case "Team":
			fmt.Fprintf(&b, "%-*s", teamWidth, h)
		case "FanPts":
			fmt.Fprintf(&b, "%-*s", fanPtsWidth, h)
		case league.InningsPitchedCode:
			b.WriteString(h + "   ")
		default:
			b.WriteString(h + " ")
		}
	}
	return b.String()
}

// Cells returns a player's values for each header, empty where the player
// has no stat block for the column.
func Cells(fp reconciliation.FantasyPlayer, headers []string) []string {
	cells := make([]string, 0, len(headers))
	for _, h := range headers {
		cells = append(cells, cell(fp, h))
	}
	return cells
}

func cell(fp reconciliation.FantasyPlayer, header string) string {
	switch header {
	case "Player":
		return fp.Player.Name
	case "Team":
		return fp.Team
	case "FanPts":
		return strconv.FormatFloat(fp.FantasyPoints, 'f', 2, 64)
	case "Pos":
		return fp.Player.PrimaryPosition
	}

	v, ok := league.ColumnValue(fp.Player, header)
	if !ok {
		return ""
	}
	if header == league.InningsPitchedCode {
		return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// PlayerString renders one player row.
func PlayerString(fp reconciliation.FantasyPlayer, headers []string, format Format) string {
	if format == FormatCSV {
		return csvLine(Cells(fp, headers))
	}

	var b strings.Builder
	for _, h := range headers {
		switch h {
		case "Player":
			fmt.Fprintf(&b, "%-*s", playerWidth, truncate(fp.Player.Name, playerWidth-1))
		case "Team":
			fmt.Fprintf(&b, "%-*s", teamWidth, truncate(fp.Team, teamWidth-1))
		case "FanPts":
			fmt.Fprintf(&b, "%*.2f ", fanPtsWidth-1, fp.FantasyPoints)
		case "Pos":
			fmt.Fprintf(&b, "%-*s", posWidth, fp.Player.PrimaryPosition)
		default:
			fmt.Fprintf(&b, "%-*s", columnWidths[h], cell(fp, h))
		}
	}
	return b.String()
}

// csvLine encodes one record without the trailing newline.
func csvLine(fields []string) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(fields)
	w.Flush()
	return strings.TrimSuffix(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Renderer writes report views in one format.
type Renderer struct {
	w      io.Writer
	format Format
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format}
}

// Players renders a titled ranked table.
func (r *Renderer) Players(title string, headers []string, players []reconciliation.FantasyPlayer) error {
	if r.format == FormatJSON {
		return r.json(map[string]interface{}{"title": title, "headers": headers, "players": players})
	}

	rows := make([][]string, 0, len(players))
	for _, fp := range players {
		rows = append(rows, Cells(fp, headers))
	}
	if r.format == FormatCSV {
		return r.csv(title, headers, rows)
	}

	lines := make([]string, 0, len(players))
	for _, fp := range players {
		lines = append(lines, PlayerString(fp, headers, FormatPretty))
	}
	return r.pretty(title, HeaderString(headers, FormatPretty), lines)
}

// TopN renders the batter and pitcher leaders as two tables.
func (r *Renderer) TopN(rule league.ScoringRule, n int, batters, pitchers []reconciliation.FantasyPlayer) error {
	if r.format == FormatJSON {
		return r.json(map[string]interface{}{"batters": batters, "pitchers": pitchers})
	}
	if err := r.Players(fmt.Sprintf("# Top %d Batters", n), rule.HeaderItemsForBatter(), batters); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(r.w); err != nil {
		return err
	}
	return r.Players(fmt.Sprintf("# Top %d Pitchers", n), rule.HeaderItemsForPitcher(), pitchers)
}

// TeamTotals renders the team ranking.
func (r *Renderer) TeamTotals(totals []TeamTotal) error {
	const title = "# Team Rankings"

	switch r.format {
	case FormatJSON:
		return r.json(totals)
	case FormatCSV:
		rows := make([][]string, 0, len(totals))
		for _, t := range totals {
			rows = append(rows, []string{t.Team, strconv.FormatFloat(t.Points, 'f', 1, 64)})
		}
		return r.csv(title, []string{"Team", "FanPts"}, rows)
	}

	lines := make([]string, 0, len(totals))
	for _, t := range totals {
		lines = append(lines, fmt.Sprintf("%-20s%8.1f", t.Team, t.Points))
	}
	return r.pretty(title, fmt.Sprintf("%-20s%8s", "Team", "FanPts"), lines)
}

// Outstanding renders single-date standout performances.
func (r *Renderer) Outstanding(rule league.ScoringRule, hits []Outstanding) error {
	const title = "# Outstanding Performances"

	if r.format == FormatJSON {
		return r.json(hits)
	}

	headers := rule.HeaderItems()
	if r.format == FormatCSV {
		rows := make([][]string, 0, len(hits))
		for _, h := range hits {
			rows = append(rows, append([]string{h.Date}, Cells(h.Player, headers)...))
		}
		return r.csv(title, append([]string{"Date"}, headers...), rows)
	}

	lines := make([]string, 0, len(hits))
	for _, h := range hits {
		lines = append(lines, fmt.Sprintf("%-11s", h.Date)+PlayerString(h.Player, headers, FormatPretty))
	}
	return r.pretty(title, fmt.Sprintf("%-11s", "Date")+HeaderString(headers, FormatPretty), lines)
}

// Weekly renders a weekly grid with a totals row.
func (r *Renderer) Weekly(grid WeeklyGrid) error {
	const title = "# Weekly Changes"

	if r.format == FormatJSON {
		return r.json(grid)
	}

	if r.format == FormatCSV {
		rows := make([][]string, 0, len(grid.Rows)+1)
		for _, row := range grid.Rows {
			rows = append(rows, append([]string{row.Date}, formatPoints(row.Points)...))
		}
		rows = append(rows, append([]string{"Total"}, formatPoints(grid.Totals)...))
		return r.csv(title, append([]string{"Date"}, grid.Teams...), rows)
	}

	var header strings.Builder
	fmt.Fprintf(&header, "%-11s", "Date")
	for _, team := range grid.Teams {
		fmt.Fprintf(&header, "%16s", truncate(team, 15))
	}

	lines := make([]string, 0, len(grid.Rows)+1)
	for _, row := range grid.Rows {
		lines = append(lines, prettyGridLine(row.Date, row.Points))
	}
	lines = append(lines, prettyGridLine("Total", grid.Totals))
	return r.pretty(title, header.String(), lines)
}

func prettyGridLine(label string, points []float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-11s", label)
	for _, p := range points {
		fmt.Fprintf(&b, "%16.1f", p)
	}
	return b.String()
}

func formatPoints(points []float64) []string {
	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, strconv.FormatFloat(p, 'f', 1, 64))
	}
	return out
}

func (r *Renderer) pretty(title, header string, lines []string) error {
	if _, err := fmt.Fprintf(r.w, "%s\n%s\n", title, header); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) csv(title string, header []string, rows [][]string) error {
	if _, err := fmt.Fprintln(r.w, title); err != nil {
		return err
	}
	cw := csv.NewWriter(r.w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func (r *Renderer) json(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
