// Command pagebench drives a synthetic page workload through a managed page
// cache and reports hit rate, evictions and how the cache grew.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/IvanBrykalov/pagecache/policy"
)

// Run using
//  go run ./cmd/pagebench run --policy gclock --capacity 512

func main() {
	app := &cli.App{
		Name:  "pagebench",
		Usage: "page cache workload driver",
		Commands: []*cli.Command{
			&runCmd,
			&policiesCmd,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var policiesCmd = cli.Command{
	Name:  "policies",
	Usage: "lists the available eviction policies",
	Action: func(ctx *cli.Context) error {
		for _, k := range policy.Kinds() {
			fmt.Fprintln(ctx.App.Writer, k)
		}
		return nil
	},
}
