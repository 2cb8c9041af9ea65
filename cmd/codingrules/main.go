package main

import (
	"fmt"
	"os"

	"github.com/mwantia/codingrules/cmd/codingrules/cli"
	"github.com/mwantia/codingrules/cmd/codingrules/cli/client"
	"github.com/mwantia/codingrules/cmd/codingrules/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}
	root := cli.NewRootCommand(info)

	root.AddCommand(cli.NewVersionCommand(info))

	root.AddCommand(server.NewAgentCommand(info.String()))
	root.AddCommand(server.NewConfigCommand())

	root.AddCommand(client.NewRulesCommand())
	root.AddCommand(client.NewQueryCommand())
	root.AddCommand(client.NewMigrationsCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
