// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Command dlprobe loads a shared library, resolves the given symbols and
// prints a JSON report of the result.
//
//	dlprobe [-call SYMBOL [-arg STRING]] [-unload] LIBRARY [SYMBOL...]
//
// The symbol given to -call must have the C signature `int f(const char*)`.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/DataDog/go-dylib"
	jsoniter "github.com/json-iterator/go"
)

type report struct {
	Library string        `json:"library"`
	Policy  string        `json:"policy"`
	Valid   bool          `json:"valid"`
	Symbols []symbolEntry `json:"symbols"`
	Call    *callEntry    `json:"call,omitempty"`
	Stats   dylib.Stats   `json:"stats"`
	Error   string        `json:"error,omitempty"`
}

type symbolEntry struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Error   string `json:"error,omitempty"`
}

type callEntry struct {
	Symbol string `json:"symbol"`
	Arg    string `json:"arg"`
	Result int32  `json:"result"`
	Error  string `json:"error,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("dlprobe", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		call   = flags.String("call", "", "symbol of an `int f(const char*)` function to call")
		arg    = flags.String("arg", "Hello, world!", "argument given to the -call function")
		policy = flags.String("policy", "unload-on-destruct", "unload policy: manual-unload or unload-on-destruct")
		unload = flags.Bool("unload", false, "unload the library before resolving the symbols")
	)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: dlprobe [flags] LIBRARY [SYMBOL...]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() < 1 {
		flags.Usage()
		return 2
	}
	pol, ok := dylib.PolicyNamed(*policy)
	if !ok {
		fmt.Fprintf(stderr, "unknown policy %q\n", *policy)
		return 2
	}

	rep := probe(flags.Arg(0), pol, flags.Args()[1:], *call, *arg, *unload)

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		fmt.Fprintf(stderr, "error encoding report: %v\n", err)
		return 1
	}
	if rep.Error != "" {
		return 1
	}
	return 0
}

func probe(path string, policy dylib.Policy, symbols []string, call, arg string, unload bool) *report {
	rep := &report{Library: path, Policy: policy.String(), Symbols: make([]symbolEntry, 0, len(symbols))}

	lib, err := dylib.Open(path, policy)
	if err != nil {
		rep.Error = err.Error()
		return rep
	}
	defer lib.Unload()

	if unload {
		if err := lib.Unload(); err != nil {
			rep.Error = err.Error()
		}
	}

	for _, name := range symbols {
		entry := symbolEntry{Name: name}
		if addr, err := lib.Symbol(name); err != nil {
			entry.Error = err.Error()
		} else {
			entry.Address = fmt.Sprintf("0x%x", addr)
		}
		rep.Symbols = append(rep.Symbols, entry)
	}

	if call != "" {
		entry := &callEntry{Symbol: call, Arg: arg}
		if fn, err := dylib.Function[func(string) int32](lib, call); err != nil {
			entry.Error = err.Error()
		} else {
			entry.Result = fn(arg)
		}
		rep.Call = entry
	}

	rep.Valid = lib.Valid()
	rep.Stats = lib.Stats()
	return rep
}
