// Package subcmd wraps flag.FlagSet with usage output for one command of the
// reviews binary.
package subcmd

import (
	"flag"
	"fmt"
	"io"
	"os"
)

// Program is the binary name shown in usage output.
const Program = "reviews"

func New(name, doc string) *Subcommand {
	sc := &Subcommand{
		FlagSet: flag.NewFlagSet(name, flag.ContinueOnError),
		name:    name,
		doc:     doc,
	}
	sc.FlagSet.Usage = func() { sc.PrintUsage(os.Stderr) }
	return sc
}

type Subcommand struct {
	*flag.FlagSet
	name string
	doc  string
	arg  *arg
}

type arg struct {
	name     string
	typename string
	usage    string
}

func (sc *Subcommand) SetArg(name, typname, usage string) *Subcommand {
	sc.arg = &arg{name, typname, usage}
	return sc
}

// Doc is the one-line description given to New.
func (sc *Subcommand) Doc() string { return sc.doc }

func (sc *Subcommand) PrintUsage(w io.Writer) {
	argSuffix := ""
	if sc.arg != nil {
		argSuffix = fmt.Sprintf(" <%s>", sc.arg.name)
	}
	fmt.Fprintf(w, "\n%s\n\n", sc.doc)
	fmt.Fprintf(w, "  %s %s [flags]%s\n\n", Program, sc.name, argSuffix)
	fmt.Fprintf(w, "flags:\n")
	sc.FlagSet.SetOutput(w)
	sc.FlagSet.PrintDefaults()
	if sc.arg != nil {
		fmt.Fprintf(w, "  <%s> %s\n", sc.arg.name, sc.arg.typename)
		fmt.Fprintf(w, "  \t%s\n", sc.arg.usage)
	}
}
