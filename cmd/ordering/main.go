// Command ordering keeps the records of CUE-defined collections at
// contiguous positions in a SQLite database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/ordering/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
