// selectionctl is the operator surface of the route-selection core:
// period lifecycle transitions, engine preview and commit, notification
// sends, and audit inspection. It is a thin shell over the service
// layer; the host HTTP application drives the same calls in production.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

func main() {
	var parser = flags.NewParser(nil, flags.HelpFlag|flags.PassDoubleDash)

	addCmd(parser, "create", "Create a selection period", `
Create a selection period in UPCOMING over a set of routes.
`, &cmdCreate{})

	addCmd(parser, "open", "Open a period for submissions", `
Transition an UPCOMING period to OPEN, allowing drivers to submit
ranked choices.
`, &cmdOpen{})

	addCmd(parser, "close", "Close a period's submission window", `
Transition an OPEN period to CLOSED, ending submissions.
`, &cmdClose{})

	addCmd(parser, "edit", "Edit a period's name or description", `
Apply a JSON merge patch over a period's name and description.
`, &cmdEdit{})

	addCmd(parser, "list", "List selection periods", `
List every selection period with its status and window.
`, &cmdList{})

	addCmd(parser, "delete", "Delete a period", `
Delete a period. Only UPCOMING periods, or CLOSED periods without
assignments, may be deleted.
`, &cmdDelete{})

	addCmd(parser, "preview", "Preview assignments without committing", `
Run the assignment engine read-only over a CLOSED period, printing the
proposed assignments and summary. Nothing is persisted.
`, &cmdPreview{})

	addCmd(parser, "commit", "Commit assignments and complete the period", `
Run the assignment engine over a CLOSED period and persist its output,
transitioning the period to COMPLETED.
`, &cmdCommit{})

	addCmd(parser, "assign", "Manually assign a route", `
Write a manual assignment for one employee while the period is CLOSED.
Manual assignments are replaced by engine output if the period is later
processed.
`, &cmdAssign{})

	addCmd(parser, "notify-open", "Send period-opened notifications", `
Email submission instructions to every eligible employee of a period.
`, &cmdNotifyOpen{})

	addCmd(parser, "notify-results", "Send assignment-result notifications", `
Email each employee their assignment or float-pool placement for a
COMPLETED period.
`, &cmdNotifyResults{})

	addCmd(parser, "audit", "List audit events", `
List audit events, most recent first, optionally filtered by user.
`, &cmdAudit{})

	addCmd(parser, "seed", "Load roster fixtures", `
Load terminals, employees, and routes from a JSON fixture file.
`, &cmdSeed{})

	if _, err := parser.Parse(); err != nil {
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp {
			fmt.Println(flagErr.Message)
			os.Exit(0)
		}
		log.WithField("err", err).Fatal("command failed")
	}
}

func addCmd(to interface {
	AddCommand(string, string, string, interface{}) (*flags.Command, error)
}, name, short, long string, data interface{}) {
	if _, err := to.AddCommand(name, short, long, data); err != nil {
		log.WithFields(log.Fields{"name": name, "err": err}).Fatal("failed to add command")
	}
}
