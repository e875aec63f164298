package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/kjohn5218/route-selection-sub000/go/selection"
)

type cmdSeed struct {
	baseConfig
	Args struct {
		Fixture string `positional-arg-name:"FIXTURE.json"`
	} `positional-args:"yes" required:"yes"`
}

// seedFixture is the JSON shape of a roster fixture file.
type seedFixture struct {
	Terminals []selection.Terminal `json:"terminals"`
	Employees []selection.Employee `json:"employees"`
	Routes    []selection.Route    `json:"routes"`
}

func (c *cmdSeed) Execute(_ []string) error {
	svc, _, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	raw, err := os.ReadFile(c.Args.Fixture)
	if err != nil {
		return fmt.Errorf("reading fixture: %w", err)
	}
	var fixture seedFixture
	if err = json.Unmarshal(raw, &fixture); err != nil {
		return fmt.Errorf("parsing fixture %s: %w", c.Args.Fixture, err)
	}

	var ctx = context.Background()
	for i := range fixture.Terminals {
		if err = svc.Store().PutTerminal(ctx, &fixture.Terminals[i]); err != nil {
			return fmt.Errorf("terminal %s: %w", fixture.Terminals[i].Code, err)
		}
	}
	for i := range fixture.Employees {
		if err = svc.Store().PutEmployee(ctx, &fixture.Employees[i]); err != nil {
			return fmt.Errorf("employee %s: %w", fixture.Employees[i].EmployeeID, err)
		}
	}
	for i := range fixture.Routes {
		if err = svc.Store().PutRoute(ctx, &fixture.Routes[i]); err != nil {
			return fmt.Errorf("route %s: %w", fixture.Routes[i].RunNumber, err)
		}
	}

	log.WithFields(log.Fields{
		"terminals": len(fixture.Terminals),
		"employees": len(fixture.Employees),
		"routes":    len(fixture.Routes),
	}).Info("seeded roster")
	return nil
}
