package league

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fortuna/mlbh2h/internal/stats"
)

// Roster size bounds accepted by the interactive prompt.
const (
	MinRosterBatters  = 1
	MaxRosterBatters  = 15
	MinRosterPitchers = 1
	MaxRosterPitchers = 15
	MinLeagueTeams    = 2
	MaxLeagueTeams    = 12
)

// Prompter collects league settings from an interactive terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ReadScoringRule asks for every weight in canonical order. An empty answer
// means 0; anything that is not a finite number is asked again.
func (p *Prompter) ReadScoringRule() (ScoringRule, error) {
	var rule ScoringRule

	for _, f := range batterFields {
		w, err := p.readWeight("batter." + f.name)
		if err != nil {
			return rule, err
		}
		*f.weight(&rule.Batter) = w
	}
	for _, f := range pitcherFields {
		w, err := p.readWeight("pitcher." + f.name)
		if err != nil {
			return rule, err
		}
		*f.weight(&rule.Pitcher) = w
	}

	return rule, nil
}

// ReadRoster asks for roster sizes, team names, then each team's batters
// and pitchers.
func (p *Prompter) ReadRoster() (Roster, error) {
	var roster Roster

	numBatters, err := p.readInt("How many batters are in a team roster?", MinRosterBatters, MaxRosterBatters)
	if err != nil {
		return roster, err
	}
	numPitchers, err := p.readInt("How many pitchers are in a team roster?", MinRosterPitchers, MaxRosterPitchers)
	if err != nil {
		return roster, err
	}
	numTeams, err := p.readInt("How many teams are in your fantasy league?", MinLeagueTeams, MaxLeagueTeams)
	if err != nil {
		return roster, err
	}

	teams := make([]string, 0, numTeams)
	for len(teams) < numTeams {
		name, err := p.readString(fmt.Sprintf("Enter the name of team %d > ", len(teams)+1))
		if err != nil {
			return roster, err
		}
		teams = append(teams, name)
	}

	for _, team := range teams {
		for _, group := range []struct {
			role stats.Role
			size int
		}{{stats.RoleBatter, numBatters}, {stats.RolePitcher, numPitchers}} {
			for i := 0; i < group.size; i++ {
				label := fmt.Sprintf("Enter the name of %s %d for team %s (ex: John Doe) > ", group.role, i+1, team)
				name, err := p.readString(label)
				if err != nil {
					return roster, err
				}
				roster.Players = append(roster.Players, RosterPlayer{Name: name, Role: group.role, Team: team})
			}
		}
	}

	return roster, nil
}

func (p *Prompter) readWeight(label string) (float64, error) {
	for {
		fmt.Fprintf(p.out, "Enter score for %s (enter for 0) > ", label)
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		if line == "" {
			return 0, nil
		}
		w, perr := strconv.ParseFloat(line, 64)
		if perr != nil || math.IsNaN(w) || math.IsInf(w, 0) {
			fmt.Fprintf(p.out, "Please input a number. your input: %s\n", line)
			continue
		}
		return w, nil
	}
}

func (p *Prompter) readInt(label string, min, max int) (int, error) {
	for {
		fmt.Fprintf(p.out, "%s (%d-%d) > ", label, min, max)
		line, err := p.readLine()
		if err != nil {
			return 0, err
		}
		n, perr := strconv.Atoi(line)
		if perr != nil || n < min || n > max {
			fmt.Fprintf(p.out, "Please input a number between %d and %d.\n", min, max)
			continue
		}
		return n, nil
	}
}

func (p *Prompter) readString(label string) (string, error) {
	for {
		fmt.Fprint(p.out, label)
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
		fmt.Fprintln(p.out, "Please input a non-empty string.")
	}
}

// readLine returns the next trimmed line. Input ending before an answer is
// given is an error so that a closed stdin cannot loop forever.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
