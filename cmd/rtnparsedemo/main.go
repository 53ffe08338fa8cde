/*
Rtnparsedemo parses text against one of a handful of built-in fixture
grammars and prints the resulting slot tree.

Usage:

	rtnparsedemo [flags]

The flags are:

	-g, --grammar NAME
		Which built-in fixture grammar to use: "parens", "arith", or
		"disambig". Defaults to "parens".

	-i, --input TEXT
		The text to parse. If not given, input is read from stdin.

	-c, --config FILE
		Load defaults for --grammar, --listen, and --max-stack-depth
		from a TOML config file. Flags given on the command line
		override the config file.

	-d, --dump-tree
		Print the completed slot tree instead of just the final
		status.

	--serve
		Instead of parsing once, start an HTTP server exposing the
		chosen grammar at POST /parse.

	-l, --listen ADDRESS
		Address to bind when --serve is given. Defaults to
		localhost:8080.

	--max-stack-depth N
		Override the engine's default parse-stack depth bound.

	-v, --version
		Print the version and exit.
*/
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/dekarrin/rtnparse/engine"
	"github.com/dekarrin/rtnparse/grammar"
	"github.com/dekarrin/rtnparse/internal/version"
)

const (
	ExitSuccess = iota
	ExitBadArgs
	ExitParseError
	ExitServerError
)

var (
	flagGrammar   = pflag.StringP("grammar", "g", "", "Built-in fixture grammar to use: parens, arith, or disambig")
	flagInput     = pflag.StringP("input", "i", "", "Text to parse; reads stdin if not given")
	flagConfig    = pflag.StringP("config", "c", "", "TOML config file to load defaults from")
	flagDumpTree  = pflag.BoolP("dump-tree", "d", false, "Print the completed slot tree")
	flagServe     = pflag.Bool("serve", false, "Start an HTTP server instead of parsing once")
	flagListen    = pflag.StringP("listen", "l", "", "Address to bind when --serve is given")
	flagMaxStack  = pflag.Int("max-stack-depth", 0, "Override the default parse-stack depth bound")
	flagVersion   = pflag.BoolP("version", "v", false, "Print the version and exit")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("rtnparsedemo %s\n", version.Current)
		return
	}

	cfg := Config{Grammar: "parens", ListenAddress: "localhost:8080"}
	if *flagConfig != "" {
		loaded, err := loadConfig(*flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading config: %s\n", err.Error())
			os.Exit(ExitBadArgs)
		}
		if loaded.Grammar != "" {
			cfg.Grammar = loaded.Grammar
		}
		if loaded.ListenAddress != "" {
			cfg.ListenAddress = loaded.ListenAddress
		}
		if loaded.MaxStackDepth != 0 {
			cfg.MaxStackDepth = loaded.MaxStackDepth
		}
	}
	if *flagGrammar != "" {
		cfg.Grammar = *flagGrammar
	}
	if *flagListen != "" {
		cfg.ListenAddress = *flagListen
	}
	if *flagMaxStack != 0 {
		cfg.MaxStackDepth = *flagMaxStack
	}

	g, err := fixtureByName(cfg.Grammar)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(ExitBadArgs)
	}

	if *flagServe {
		if err := serve(cfg.ListenAddress, g, cfg.MaxStackDepth); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			os.Exit(ExitServerError)
		}
		return
	}

	input := *flagInput
	if input == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: reading stdin: %s\n", err.Error())
			os.Exit(ExitBadArgs)
		}
		input = string(data)
	}

	s := engine.NewParseState()
	if cfg.MaxStackDepth != 0 {
		s.MaxStackDepth = cfg.MaxStackDepth
	}
	s.Init(g)

	status, _, err := engine.Parse(g, s, []byte(input), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(ExitParseError)
	}

	fmt.Printf("status: %s\n", status)
	if status == engine.StatusEOF && *flagDumpTree {
		fmt.Println(s.Result().DebugString())
	}
}

// fixtureByName resolves one of the built-in demo grammars by name.
func fixtureByName(name string) (*grammar.Grammar, error) {
	switch name {
	case "parens", "":
		return grammar.BalancedParens(), nil
	case "arith":
		return grammar.ArithmeticSum(), nil
	case "disambig":
		return grammar.Disambiguation(), nil
	default:
		return nil, fmt.Errorf("unknown grammar %q: want parens, arith, or disambig", name)
	}
}
