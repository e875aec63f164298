package main

import (
	"context"
	"fmt"

	"github.com/kjohn5218/route-selection-sub000/go/store"
)

type cmdAudit struct {
	baseConfig
	User  string `long:"user" description:"Filter events to this user"`
	Limit int    `long:"limit" default:"50" description:"Maximum number of events returned"`
}

func (c *cmdAudit) Execute(_ []string) error {
	svc, pr, err := c.open()
	if err != nil {
		return err
	}
	defer svc.Store().Close()

	events, err := svc.AuditEvents(context.Background(), pr,
		store.AuditQuery{UserID: c.User, Limit: c.Limit})
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Printf("%s  %-12s  %-24s  %s  %s\n",
			ev.Timestamp.Format("2006-01-02 15:04:05"),
			ev.UserID, ev.Action, ev.Resource, ev.Details)
	}
	return nil
}
