package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
)

type cmdNotifyOpen struct {
	baseConfig
	Args struct {
		Period string `positional-arg-name:"PERIOD-ID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *cmdNotifyOpen) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	result, err := svc.NotifyPeriodOpened(context.Background(), pr, c.Args.Period)
	if err != nil {
		return err
	}
	fmt.Printf("%s sent=%d failed=%d\n", color.GreenString("notified:"), result.Sent, result.Failed)
	return nil
}

type cmdNotifyResults struct {
	baseConfig
	Args struct {
		Period string `positional-arg-name:"PERIOD-ID"`
	} `positional-args:"yes" required:"yes"`
}

func (c *cmdNotifyResults) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	result, err := svc.NotifyAssignments(context.Background(), pr, c.Args.Period)
	if err != nil {
		return err
	}
	fmt.Printf("%s sent=%d failed=%d\n", color.GreenString("notified:"), result.Sent, result.Failed)
	return nil
}
