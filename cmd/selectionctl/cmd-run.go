package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/kjohn5218/route-selection-sub000/go/engine"
	"github.com/kjohn5218/route-selection-sub000/go/service"
)

type cmdPreview struct {
	baseConfig
	Args struct {
		Period string `positional-arg-name:"PERIOD-ID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *cmdPreview) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	var ctx = context.Background()
	result, err := svc.Preview(ctx, pr, c.Args.Period)
	if err != nil {
		return err
	}
	fmt.Println(color.YellowString("preview only; nothing was written"))
	printResult(ctx, svc, result)
	return nil
}

type cmdCommit struct {
	baseConfig
	Args struct {
		Period string `positional-arg-name:"PERIOD-ID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *cmdCommit) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	var ctx = context.Background()
	result, err := svc.Commit(ctx, pr, c.Args.Period)
	if err != nil {
		return err
	}
	fmt.Printf("period %s is now %s\n", c.Args.Period, color.CyanString("COMPLETED"))
	printResult(ctx, svc, result)
	return nil
}

type cmdAssign struct {
	baseConfig
	Args struct {
		Period   string `positional-arg-name:"PERIOD-ID"`
		Employee string `positional-arg-name:"EMPLOYEE-ID"`
		Route    string `positional-arg-name:"ROUTE-ID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *cmdAssign) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	if err = svc.ManualAssign(context.Background(), pr, c.Args.Period, c.Args.Employee, c.Args.Route); err != nil {
		return err
	}
	fmt.Printf("assigned route %s to employee %s\n", c.Args.Route, c.Args.Employee)
	return nil
}

// printResult writes an assignment table and summary, resolving
// employee and route display names where it can.
func printResult(ctx context.Context, svc *service.Service, result *engine.Result) {
	for _, a := range result.Assignments {
		var who = a.EmployeeID
		if e, err := svc.Store().GetEmployee(ctx, a.EmployeeID); err == nil {
			who = fmt.Sprintf("%s (%s)", e.FullName(), e.EmployeeID)
		}
		switch {
		case a.FloatPool():
			fmt.Printf("  %-40s %s\n", who, color.YellowString("float pool"))
		case a.Manual:
			fmt.Printf("  %-40s route %s (manual)\n", who, routeLabel(ctx, svc, a.RouteID))
		default:
			fmt.Printf("  %-40s route %s (choice #%d)\n", who, routeLabel(ctx, svc, a.RouteID), a.ChoiceReceived)
		}
	}

	var s = result.Summary
	fmt.Printf("%s first=%d second=%d third=%d manual=%d float=%d total=%d\n",
		color.GreenString("summary:"),
		s.FirstChoice, s.SecondChoice, s.ThirdChoice, s.Manual, s.FloatPool, s.Total())
}

func routeLabel(ctx context.Context, svc *service.Service, routeID string) string {
	if r, err := svc.Store().GetRoute(ctx, routeID); err == nil {
		return r.RunNumber
	}
	return routeID
}
