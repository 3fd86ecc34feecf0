package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/reoring/bcon"
	"github.com/reoring/bcon/i18n"
	jsonsrc "github.com/reoring/bcon/source/json"
	yamlsrc "github.com/reoring/bcon/source/yaml"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "convert":
		convertCmd(os.Args[2:])
	case "render":
		renderCmd(os.Args[2:])
	case "json":
		jsonCmd(os.Args[2:])
	case "kinds":
		kindsCmd()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "bcon CLI\n\nUsage:\n  bcon convert [-format yaml|json] [-array] [-dup error|warn|ignore] [-max-depth N] [-lang en|ja] [-zstd] [-o out.bson] fixture\n  bcon render [-format yaml|json] [-array] [-max-depth N] fixture\n  bcon json [-format yaml|json] [-array] [-dup error|warn|ignore] [-max-depth N] [-lang en|ja] fixture\n  bcon kinds\n\nNotes:\n  - A fixture path of '-' reads standard input; -format is then required.")
}

type commonFlags struct {
	format   string
	array    bool
	dup      string
	maxDepth int
	verbose  bool
	lang     string
}

// register adds the flags every fixture subcommand reads.
func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "", "fixture format: yaml or json (default: from file extension)")
	fs.BoolVar(&c.array, "array", false, "treat the fixture as an array-mode stream")
	fs.IntVar(&c.maxDepth, "max-depth", bcon.DefaultMaxDepth, "maximum nesting depth; negative disables the limit")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
}

// registerConversion adds the flags of subcommands that convert and may
// report issues.
func (c *commonFlags) registerConversion(fs *flag.FlagSet) {
	c.register(fs)
	fs.StringVar(&c.dup, "dup", "error", "duplicate key policy: error, warn or ignore")
	fs.StringVar(&c.lang, "lang", "en", "message language: en or ja")
}

func (c *commonFlags) options() bcon.Options {
	var sev bcon.Severity
	switch c.dup {
	case "error", "":
		sev = bcon.Error
	case "warn":
		sev = bcon.Warn
	case "ignore":
		sev = bcon.Ignore
	default:
		fatalf("unknown -dup %q", c.dup)
	}
	return bcon.Options{
		Strictness: bcon.Strictness{OnDuplicateKey: sev},
		MaxDepth:   c.maxDepth,
		IssueSink: func(it bcon.Issue) {
			fmt.Fprintf(os.Stderr, "warning: %s at %s (cell %d)\n", describe(it), it.Path, it.Pos)
		},
	}
}

func (c *commonFlags) setup() {
	i18n.SetLanguage(c.lang)
	if !c.verbose {
		return
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		fatalf("logger: %v", err)
	}
	bcon.SetLogger(l)
}

func (c *commonFlags) mode() bcon.Mode {
	if c.array {
		return bcon.ModeArray
	}
	return bcon.ModeDocument
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var c commonFlags
	var out string
	var compress bool
	c.registerConversion(fs)
	fs.StringVar(&out, "o", "", "output filename (default: stdout)")
	fs.BoolVar(&compress, "zstd", false, "compress the BSON output with zstd")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	c.setup()
	s := load(fs.Arg(0), c.format)

	var raw []byte
	var err error
	if c.array {
		raw, err = bcon.ConvertArray(s, c.options())
	} else {
		raw, err = bcon.Convert(s, c.options())
	}
	if err != nil {
		failConvert(err)
	}
	if compress {
		raw = zstdBytes(raw)
	}
	if out == "" {
		if _, err := os.Stdout.Write(raw); err != nil {
			fatalf("writing output: %v", err)
		}
		return
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fatalf("creating output dir: %v", err)
		}
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		fatalf("writing output: %v", err)
	}
}

func zstdBytes(raw []byte) []byte {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		fatalf("zstd: %v", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil)
}

func renderFlagSet(c *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c.register(fs)
	return fs
}

func renderCmd(args []string) {
	var c commonFlags
	fs := renderFlagSet(&c)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	c.setup()
	s := load(fs.Arg(0), c.format)
	fmt.Println(bcon.RenderWith(s, c.mode(), bcon.Options{MaxDepth: c.maxDepth}))
}

func jsonCmd(args []string) {
	fs := flag.NewFlagSet("json", flag.ExitOnError)
	var c commonFlags
	c.registerConversion(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	c.setup()
	s := load(fs.Arg(0), c.format)
	var out string
	var err error
	if c.array {
		out, err = bcon.DumpArrayJSON(s, c.options())
	} else {
		out, err = bcon.DumpJSON(s, c.options())
	}
	if err != nil {
		failConvert(err)
	}
	fmt.Println(out)
}

func kindsCmd() {
	for _, k := range bcon.Kinds() {
		d, _ := bcon.Describe(k)
		fmt.Printf("%3d  %-14s %s\n", uint8(k), d.Name, d.Label)
	}
}

func load(path, format string) bcon.Stream {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		fatalf("reading fixture: %v", err)
	}
	if format == "" {
		format = formatFromExt(path)
	}
	var s bcon.Stream
	switch format {
	case "yaml":
		s, err = yamlsrc.Load(data)
	case "json":
		s, err = jsonsrc.Load(bytes.TrimSpace(data))
	default:
		fatalf("cannot detect fixture format for %s; pass -format", path)
	}
	if err != nil {
		fatalf("loading fixture: %v", err)
	}
	return s
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	return ""
}

func failConvert(err error) {
	var ce *bcon.ConvertError
	if !errors.As(err, &ce) {
		fatalf("%v", err)
	}
	fmt.Fprintln(os.Stderr, ce.Diagnostic)
	for _, it := range ce.Issues {
		fmt.Fprintf(os.Stderr, "error: %s at %s (cell %d)\n", describe(it), it.Path, it.Pos)
	}
	os.Exit(1)
}

// describe localizes an issue code; the last path token is offered as key.
func describe(it bcon.Issue) string {
	key := it.Path
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		key = key[i+1:]
	}
	return i18n.T(it.Code, map[string]string{"key": "'" + key + "'", "path": it.Path})
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
