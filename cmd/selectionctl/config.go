package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/kjohn5218/route-selection-sub000/go/auth"
	"github.com/kjohn5218/route-selection-sub000/go/notify"
	"github.com/kjohn5218/route-selection-sub000/go/service"
	"github.com/kjohn5218/route-selection-sub000/go/store"
)

// baseConfig is embedded by every command. It locates the database,
// configures logging, and names the actor recorded in the audit log.
type baseConfig struct {
	Database string `long:"database" env:"SELECTION_DB" default:"selection.db" description:"Path of the selection database"`
	Actor    string `long:"actor" env:"SELECTION_ACTOR" default:"selectionctl" description:"User recorded in the audit log"`

	Log struct {
		Level string `long:"level" env:"LEVEL" default:"info" choice:"trace" choice:"debug" choice:"info" choice:"warn" description:"Logging level"`
	} `group:"Logging" namespace:"log" env-namespace:"LOG"`

	SMTP struct {
		Addr string `long:"addr" env:"ADDR" description:"host:port of the SMTP relay. When empty, mail is logged rather than sent"`
		From string `long:"from" env:"FROM" description:"From address of outbound mail"`
	} `group:"Mail" namespace:"smtp" env-namespace:"SMTP"`
}

// open configures logging and returns the wired service plus the
// administrative principal the CLI operates as. Role enforcement is the
// service's concern even here: the CLI is trusted tooling.
func (c *baseConfig) open() (*service.Service, auth.Principal, error) {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, auth.Principal{}, fmt.Errorf("parsing log level: %w", err)
	}
	log.SetLevel(level)

	s, err := store.Open(c.Database)
	if err != nil {
		return nil, auth.Principal{}, fmt.Errorf("opening database %s: %w", c.Database, err)
	}

	var sender notify.Sender = notify.LogSender{}
	if c.SMTP.Addr != "" {
		sender = &notify.SMTPSender{Addr: c.SMTP.Addr, From: c.SMTP.From}
	}
	return service.New(s, sender, 0), auth.Principal{UserID: c.Actor, Role: auth.RoleAdmin}, nil
}
