package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

const dateFormat = "2006-01-02"

type cmdCreate struct {
	baseConfig
	Terminal    string   `long:"terminal" description:"Terminal owning the period"`
	Name        string   `long:"name" required:"true" description:"Display name, e.g. 'Fall 2026'"`
	Description string   `long:"description" description:"Free-form description"`
	Start       string   `long:"start" required:"true" description:"First day of the window (YYYY-MM-DD)"`
	End         string   `long:"end" required:"true" description:"Last day of the window (YYYY-MM-DD)"`
	Required    int      `long:"required" default:"3" description:"Number of ranked choices each driver must submit (1-3)"`
	Routes      []string `long:"route" required:"true" description:"Route ID in the period's catalog. May be repeated"`
}

func (c *cmdCreate) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	start, err := time.Parse(dateFormat, c.Start)
	if err != nil {
		return fmt.Errorf("parsing --start: %w", err)
	}
	end, err := time.Parse(dateFormat, c.End)
	if err != nil {
		return fmt.Errorf("parsing --end: %w", err)
	}

	var period = selection.SelectionPeriod{
		TerminalID:         c.Terminal,
		Name:               c.Name,
		Description:        c.Description,
		StartDate:          start,
		EndDate:            end,
		RequiredSelections: c.Required,
		RouteIDs:           c.Routes,
	}
	if err = svc.CreatePeriod(context.Background(), pr, &period); err != nil {
		return err
	}
	fmt.Printf("created period %s (%s)\n", color.GreenString(period.ID), period.Name)
	return nil
}

type cmdOpen struct {
	baseConfig
	Args struct {
		Period string `positional-arg-name:"PERIOD-ID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *cmdOpen) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	if err = svc.OpenPeriod(context.Background(), pr, c.Args.Period); err != nil {
		return err
	}
	fmt.Printf("period %s is now %s\n", c.Args.Period, color.GreenString("OPEN"))
	return nil
}

type cmdClose struct {
	baseConfig
	Args struct {
		Period string `positional-arg-name:"PERIOD-ID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *cmdClose) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	if err = svc.ClosePeriod(context.Background(), pr, c.Args.Period); err != nil {
		return err
	}
	fmt.Printf("period %s is now %s\n", c.Args.Period, color.YellowString("CLOSED"))
	return nil
}

type cmdEdit struct {
	baseConfig
	Args struct {
		Period string `positional-arg-name:"PERIOD-ID"`
		Patch  string `positional-arg-name:"MERGE-PATCH"`
	} `positional-args:"yes" required:"yes"`
}

func (c *cmdEdit) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	if err = svc.EditPeriod(context.Background(), pr, c.Args.Period, []byte(c.Args.Patch)); err != nil {
		return err
	}
	fmt.Printf("period %s updated\n", c.Args.Period)
	return nil
}

type cmdList struct {
	baseConfig
}

func (c *cmdList) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	periods, err := svc.ListPeriods(context.Background(), pr)
	if err != nil {
		return err
	}
	for i := range periods {
		var p = &periods[i]
		fmt.Printf("%s  %-10s  %s .. %s  %s (%d routes)\n",
			p.ID, statusColor(p.Status),
			p.StartDate.Format(dateFormat), p.EndDate.Format(dateFormat),
			p.Name, len(p.RouteIDs))
	}
	return nil
}

type cmdDelete struct {
	baseConfig
	Args struct {
		Period string `positional-arg-name:"PERIOD-ID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *cmdDelete) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	if err = svc.DeletePeriod(context.Background(), pr, c.Args.Period); err != nil {
		return err
	}
	fmt.Printf("period %s deleted\n", c.Args.Period)
	return nil
}

func statusColor(s selection.Status) string {
	switch s {
	case selection.StatusOpen:
		return color.GreenString(string(s))
	case selection.StatusClosed, selection.StatusProcessing:
		return color.YellowString(string(s))
	case selection.StatusCompleted:
		return color.CyanString(string(s))
	default:
		return string(s)
	}
}
