// Command portal serves the role-based dashboard portal and administers its
// accounts.
//
// @title                       Dashboard Portal API
// @version                     1.0
// @description                 Role-based access to BI dashboards with account administration.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by the token returned by /auth/login.
package main

import (
	"fmt"
	"os"

	"github.com/portalbi/dashboard-portal/cmd/portal/cli"
)

// Set via -ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
