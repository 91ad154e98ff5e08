// Package flagx lets independent flag sets share one command line: each set
// picks out the arguments it owns and parses only those.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// flagName returns the name of a "-name", "--name" or "-name=value"
// argument, and whether arg is a flag at all. A lone "-" or "--" is not.
func flagName(arg string) (string, bool) {
	if len(arg) < 2 || arg[0] != '-' {
		return "", false
	}
	name := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	name, _, _ = strings.Cut(name, "=")
	return name, name != ""
}

// Pick returns the arguments of the named flags, values included, in their
// original order. Names are given without dashes and match both the -name
// and --name spellings, like the flag package does.
//
// A value is taken from the next argument unless it starts with '-'; use the
// -name=value form for such values.
func Pick(args []string, names ...string) []string {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	picked := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		name, ok := flagName(arg)
		if !ok || !wanted[name] {
			continue
		}

		picked = append(picked, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			picked = append(picked, args[i+1])
			i++
		}
	}

	return picked
}

// ConfigPath returns the config file named by -c or -config in args. The
// last occurrence wins; "" means none was given.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(Pick(args, "c", "config"))

	return path
}
