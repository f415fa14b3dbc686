// this program appends reviews of newly released albums to a csv file. run it
// periodically: it remembers the last successful harvest in a timestamp file
// and only fetches reviews for albums released since then.
//
// see db/schema.sql for the optional sqlite archive it also keeps.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/amonks/reviews/sigctx"
)

func main() {
	err := run(sigctx.New(), os.Args[1:])
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "canceled")
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var usage = strings.TrimSpace(`
usage: reviews [$cmd]
valid $cmd are 'harvest' (the default) and 'status'
for help: reviews $cmd -help
`)

func run(ctx context.Context, args []string) error {
	cmd := "harvest"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "harvest":
		return harvest(ctx, args)

	case "status":
		return status(ctx, args)

	case "help":
		fmt.Println(usage)
		return nil

	default:
		return fmt.Errorf("unknown cmd: '%s'\n%s", cmd, usage)
	}
}
