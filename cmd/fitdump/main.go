// Command fitdump decodes a FIT file and dumps its messages in a
// human-readable, JSON, or parquet form.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/fitdecode"
)

type iterSeq = iter.Seq2[fit.Message, error]

func main() {
	var (
		outPath   = flag.String("o", "", "Output file (default: stdout)")
		format    = flag.String("t", "readable", "Output format: readable|json|parquet")
		name      = flag.String("n", "", "Only dump messages with this name (e.g. record)")
		ignoreCRC = flag.Bool("ignore-crc", false, "Skip header/file CRC verification")
		cfgPath   = flag.String("config", "", "Path to a TOML config file")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] FILE\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	fitPath := flag.Arg(0)

	if err := run(fitPath, *outPath, *format, *name, *ignoreCRC, *cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "fitdump: %v\n", err)
		os.Exit(1)
	}
}

func run(fitPath, outPath, format, name string, ignoreCRC bool, cfgPath string) error {
	cfg := fit.DefaultConfig()
	if cfgPath != "" {
		loaded, err := fit.LoadConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	opts := cfg.Options()
	if ignoreCRC {
		opts = append(opts, fit.WithVerifyCRC(false))
	}

	dec, err := fit.Open(fitPath, opts...)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer dec.Close()

	var messages iterSeq = dec.Messages()
	if name != "" {
		messages = dec.MessagesNamed(name)
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "parquet" {
		if outPath == "" {
			return fmt.Errorf("-t parquet requires -o")
		}
		return writeParquet(outPath, messages)
	}

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriterSize(out, 1<<16)
	defer w.Flush()

	switch format {
	case "readable":
		return dumpReadable(w, messages)
	case "json":
		return dumpJSON(w, messages)
	default:
		return fmt.Errorf("unknown format %q (want readable|json|parquet)", format)
	}
}

func dumpReadable(w *bufio.Writer, messages iterSeq) error {
	for msg, err := range messages {
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s (#%d) @%d local=%d\n", msg.Name, msg.Num, msg.Offset, msg.LocalTag)
		for _, f := range msg.Fields {
			if f.None {
				fmt.Fprintf(w, "  %-24s = <none>\n", f.Name)
				continue
			}
			if f.Units != "" {
				fmt.Fprintf(w, "  %-24s = %v %s\n", f.Name, f.Value, f.Units)
			} else {
				fmt.Fprintf(w, "  %-24s = %v\n", f.Name, f.Value)
			}
		}
	}
	return nil
}

func dumpJSON(w *bufio.Writer, messages iterSeq) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for msg, err := range messages {
		if err != nil {
			return err
		}
		if err := enc.Encode(msg); err != nil {
			return err
		}
	}
	return nil
}
