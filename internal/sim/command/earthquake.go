// Package command implements the /earthquake operator command.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"quakecraft.ai/internal/sim/schedule"
	"quakecraft.ai/internal/sim/voxel"
)

const Name = "earthquake"

const (
	usageText   = "Usage: /earthquake [showdates|gendates|test <magnitude>]"
	testUsage   = "Usage: /earthquake test <1-9>"
	invalidText = "Invalid command. Use: /earthquake showdates, /earthquake gendates, or /earthquake test <1-9>"
	noDatesText = "No scheduled earthquakes found for this year."
)

// Director is the subset of *director.Director the command drives.
type Director interface {
	ShowDates() (int, []schedule.ScheduledEvent)
	GenDates() int
	TestQuake(pos voxel.Vec3i, magnitude int) int
}

// Caller is the player issuing the command; test quakes start at Pos.
type Caller struct {
	PlayerID string
	Pos      voxel.Vec3i
}

type Earthquake struct {
	d Director
}

func NewEarthquake(d Director) *Earthquake { return &Earthquake{d: d} }

// Execute runs "/earthquake ..." and returns the reply text. Errors carry a
// protocol code and the player-facing text (see PlayerMessage).
func (e *Earthquake) Execute(c Caller, line string) (reply string, err error) {
	p, ok := Parse(line)
	if !ok {
		return "", ErrUsage(Name, usageText)
	}
	if p.Name != Name {
		return "", ErrUnknownCommand(p.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			reply, err = "", Internal(Name, fmt.Errorf("%v", r))
		}
	}()
	if len(p.Args) == 0 {
		return "", ErrUsage(Name, usageText)
	}

	sub := strings.ToLower(p.Args[0])
	switch sub {
	case "showdates":
		return e.showDates(), nil
	case "gendates":
		return fmt.Sprintf("Earthquake schedule regenerated for year %d", e.d.GenDates()), nil
	case "test":
		if len(p.Args) < 2 {
			return "", ErrUsage(Name, testUsage)
		}
		m, err := strconv.Atoi(p.Args[1])
		if err != nil {
			return "", ErrUsage(Name, testUsage)
		}
		m = e.d.TestQuake(c.Pos, m)
		return fmt.Sprintf("Triggered magnitude %d earthquake.", m), nil
	}
	if m, err := strconv.Atoi(sub); err == nil {
		m = e.d.TestQuake(c.Pos, m)
		return fmt.Sprintf("Triggered magnitude %d earthquake test.", m), nil
	}
	return "", ErrUsage(Name, invalidText)
}

func (e *Earthquake) showDates() string {
	year, events := e.d.ShowDates()
	if len(events) == 0 {
		return noDatesText
	}
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		parts = append(parts, ev.String())
	}
	return fmt.Sprintf("Scheduled earthquakes for year %d: %s", year, strings.Join(parts, "; "))
}
