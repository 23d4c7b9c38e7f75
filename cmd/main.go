package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/aukilabs/depthmap/comm"
	"github.com/aukilabs/depthmap/featureflag"
	dmhttp "github.com/aukilabs/depthmap/http"
	"github.com/aukilabs/depthmap/metagraph"
	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/encoding/json"
)

var (
	// The depthmap version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "depthmap_info",
		Help:        "Depthmap information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// Commands run by the tool.
const (
	commandBuild   = "build"
	commandInspect = "inspect"
	commandConvert = "convert"
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Command       string   `cli:""        env:"DEPTHMAP_COMMAND"        help:"Command to run (build|inspect|convert)."`
	Input         string   `cli:""        env:"DEPTHMAP_INPUT"          help:"Plan file to build, or graph file to inspect or convert."`
	Output        string   `cli:""        env:"DEPTHMAP_OUTPUT"         help:"Graph file to write."`
	Format        string   `cli:""        env:"DEPTHMAP_FORMAT"         help:"Summary format (json|msgpack|proto)."`
	DisplayedOnly bool     `cli:""        env:"DEPTHMAP_DISPLAYED_ONLY" help:"Write only the map displayed in front."`
	GridSpacing   float64  `cli:""        env:"DEPTHMAP_GRID_SPACING"   help:"Point map grid spacing used when a plan gives none."`
	FeatureFlags  []string `cli:",hidden" env:"DEPTHMAP_FEATURE_FLAGS"  help:"Comma separated build feature flags"`
	AdminAddr     string   `cli:""        env:"DEPTHMAP_ADMIN_ADDR"     help:"Admin listening address. Empty disables it."`
	Serve         bool     `cli:",hidden" env:"DEPTHMAP_SERVE"          help:"Keep the admin listener running until interrupted."`
	LogLevel      string   `cli:""        env:"DEPTHMAP_LOG_LEVEL"      help:"Log level (debug|info|warning|error)."`
	LogIndent     bool     `cli:""        env:"DEPTHMAP_LOG_INDENT"     help:"Indent logs."`
	Version       bool     `cli:""        env:"-"                       help:"Show version."`
	Help          bool     `cli:""        env:"-"                       help:"Show help."`
}

func main() {
	conf := config{
		Command:     commandInspect,
		Format:      metagraph.FormatJSON,
		GridSpacing: 1,
		LogLevel:    logs.InfoLevel.String(),
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Builds, inspects and converts depthmap graph files.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	if err := validateConfig(conf); err != nil {
		logs.Fatal(err)
	}

	var loaded atomic.Pointer[metagraph.MetaGraph]
	var wg sync.WaitGroup
	serveCtx, stopServing := context.WithCancel(ctx)
	defer stopServing()

	if conf.AdminAddr != "" {
		admin := dmhttp.NewAdminHandler(dmhttp.AdminOptions{
			Version: version,
			Ready: func() bool {
				return loaded.Load() != nil
			},
			Summary: func() ([]byte, error) {
				g := loaded.Load()
				if g == nil {
					return nil, nil
				}
				return json.Marshal(g.Summary())
			},
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			dmhttp.ListenAndServe(serveCtx, &http.Server{Addr: conf.AdminAddr, Handler: admin})
		}()
	}

	logs.WithTag("version", version).
		WithTag("command", conf.Command).
		WithTag("input", conf.Input).
		WithTag("log_level", conf.LogLevel).
		Info("starting depthmap")

	err := run(ctx, conf, &loaded, os.Stdout)
	if comm.IsCancelled(err) {
		logs.WithTag("command", conf.Command).Info("command interrupted")
		os.Exit(1)
	}
	if err != nil {
		logs.Fatal(errors.New("command failed").
			WithTag("command", conf.Command).
			Wrap(err))
	}

	if conf.Serve && conf.AdminAddr != "" {
		<-ctx.Done()
	}
	stopServing()
	wg.Wait()
}

// run executes the configured command. The graph it loads or builds is
// stored in loaded for the admin listener.
func run(ctx context.Context, conf config, loaded *atomic.Pointer[metagraph.MetaGraph], out io.Writer) error {
	switch conf.Command {
	case commandBuild:
		p, err := readPlanFile(conf.Input)
		if err != nil {
			return err
		}
		g, err := buildGraph(ctx, p, conf.GridSpacing, featureflag.New(conf.FeatureFlags))
		if err != nil {
			return err
		}
		loaded.Store(g)
		return writeGraph(g, conf)

	case commandInspect:
		g, err := readGraph(conf.Input)
		if err != nil {
			return err
		}
		loaded.Store(g)
		return g.Summary().Encode(out, conf.Format)

	case commandConvert:
		g, err := readGraph(conf.Input)
		if err != nil {
			return err
		}
		loaded.Store(g)
		return writeGraph(g, conf)

	default:
		return errors.New("unknown command").WithTag("command", conf.Command)
	}
}

func readGraph(path string) (*metagraph.MetaGraph, error) {
	g := metagraph.New("")
	res, err := g.ReadFile(path)
	if res.Failed() {
		return nil, err
	}
	if res != metagraph.OK {
		logs.WithTag("path", path).
			WithTag("version", g.FileVersion()).
			WithTag("result", res.String()).
			Info("graph converted from an older version")
	}
	return g, nil
}

func writeGraph(g *metagraph.MetaGraph, conf config) error {
	if conf.DisplayedOnly {
		return g.WriteDisplayedFile(conf.Output)
	}
	return g.WriteFile(conf.Output)
}

func validateConfig(conf config) error {
	switch conf.Command {
	case commandBuild, commandConvert:
		if conf.Output == "" {
			return errors.New("output file required").WithTag("command", conf.Command)
		}
	case commandInspect:
		switch conf.Format {
		case metagraph.FormatJSON, metagraph.FormatMsgpack, metagraph.FormatProto:
		default:
			return errors.New("invalid summary format").WithTag("format", conf.Format)
		}
	default:
		return errors.New("invalid command").WithTag("command", conf.Command)
	}

	if conf.Input == "" {
		return errors.New("input file required").WithTag("command", conf.Command)
	}
	if !(conf.GridSpacing > 0) {
		return errors.New("invalid grid spacing").WithTag("grid_spacing", conf.GridSpacing)
	}
	return nil
}
