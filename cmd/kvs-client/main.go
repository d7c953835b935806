// Copyright (c) HashiCorp, Inc
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dreamsxin/kvstore/client"
)

// usage mirrors kvs-client's three subcommands: set, get, rm.
func usage() {
	fmt.Fprintln(os.Stderr, "usage: kvs-client <set KEY VALUE|get KEY|rm KEY> [--addr IP:PORT]")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 1
	}

	sub := args[0]
	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	addr := fs.String("addr", "127.0.0.1:4000", "IP:PORT of the kvs-server to talk to")

	switch sub {
	case "set":
		rest := parseTrailing(fs, args[1:])
		if len(rest) != 2 {
			usage()
			return 1
		}
		if err := client.Set(*addr, rest[0], rest[1]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "get":
		rest := parseTrailing(fs, args[1:])
		if len(rest) != 1 {
			usage()
			return 1
		}
		v, err := client.Get(*addr, rest[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if v == nil {
			fmt.Println("Key not found")
			return 0
		}
		fmt.Println(*v)
		return 0

	case "rm":
		rest := parseTrailing(fs, args[1:])
		if len(rest) != 1 {
			usage()
			return 1
		}
		if err := client.Remove(*addr, rest[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		usage()
		return 1
	}
}

// parseTrailing parses --addr wherever it appears among args and returns the
// remaining positional arguments (KEY, VALUE, ...), matching structopt's
// willingness to interleave flags and positionals.
func parseTrailing(fs *flag.FlagSet, args []string) []string {
	var positional, flagArgs []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--addr" && i+1 < len(args) {
			flagArgs = append(flagArgs, args[i], args[i+1])
			i++
			continue
		}
		positional = append(positional, args[i])
	}
	_ = fs.Parse(flagArgs)
	return positional
}
