package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jrivets/log4g"
	"gopkg.in/urfave/cli.v2"

	"github.com/sectrean/daggerok"
	"github.com/sectrean/daggerok/config"
	"github.com/sectrean/daggerok/examples"
)

const (
	Version = "0.1.0"
)

const (
	argLogCfgFile = "log-config-file"
	argCfgFile    = "config-file"
	argEnvFile    = "env-file"
	argGreeting   = "greeting"
	argListen     = "listen"
)

// envPrefix is the prefix of the environment variables read by config.FromEnv
const envPrefix = "DAGGEROK"

func main() {
	defer log4g.Shutdown()
	app := &cli.App{
		Name:    "daggerok",
		Version: Version,
		Usage:   "Initialize the example application and inspect its beans",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  argLogCfgFile,
				Usage: "log4g configuration file path",
			},
			&cli.StringFlag{
				Name:  argCfgFile,
				Usage: "daggerok configuration file path (JSON)",
			},
			&cli.StringFlag{
				Name:  argEnvFile,
				Usage: "file with " + envPrefix + "_* environment variables",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  argGreeting,
				Usage: "greeting of the example application",
				Value: examples.DefaultGreeting,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "beans",
				Usage:  "Print every bean key with its type",
				Action: printBeans,
			},
			{
				Name:   "report",
				Usage:  "Print the resolution report",
				Action: printReport,
			},
			{
				Name:   "serve",
				Usage:  "Serve GET /hello/{name}",
				Action: serve,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argListen,
						Usage: "listen address",
						Value: ":8080",
					},
				},
			},
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))
	if err := app.Run(os.Args); err != nil {
		getLogger().Fatal("Failed to run daggerok, cause: ", err)
	}
}

// newContext loads the configuration from the file and the environment and
// initializes the example application.
func newContext(c *cli.Context) (*daggerok.Context, error) {
	logCfgFile := c.String(argLogCfgFile)
	if logCfgFile != "" {
		if err := log4g.ConfigF(logCfgFile); err != nil {
			return nil, err
		}
	}

	logger := getLogger()
	cfg := config.GetDefaultConfig()

	cfgFile := c.String(argCfgFile)
	if cfgFile != "" {
		logger.Info("Loading daggerok config from=", cfgFile)
		fileCfg, err := config.ReadFromFile(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg.Apply(fileCfg)
	}

	envCfg, err := config.FromEnv(envPrefix, c.String(argEnvFile))
	if err != nil {
		return nil, err
	}
	cfg.Apply(envCfg)

	dc := examples.NewContext(cfg, c.String(argGreeting))
	if err := dc.Initialize(); err != nil {
		return nil, err
	}
	return dc, nil
}

func printBeans(c *cli.Context) error {
	dc, err := newContext(c)
	if err != nil {
		return err
	}

	w := c.App.Writer
	for _, key := range dc.Registry().Keys() {
		bean, _ := dc.GetBeanByKey(key)
		fmt.Fprintf(w, "%-60s %s\n", key, typeName(bean))
	}
	return nil
}

func printReport(c *cli.Context) error {
	dc, err := newContext(c)
	if err != nil {
		return err
	}

	writeReport(c.App.Writer, dc.Report())
	return nil
}

func writeReport(w io.Writer, r daggerok.Report) {
	fmt.Fprintf(w, "discovered: %s\n", humanize.Comma(int64(r.Discovered)))
	fmt.Fprintf(w, "created:    %s\n", humanize.Comma(int64(r.Created)))
	fmt.Fprintf(w, "passes:     %s\n", humanize.Comma(int64(r.Passes)))

	fmt.Fprintf(w, "unresolved: %s\n", humanize.Comma(int64(len(r.Unresolved))))
	for _, key := range r.Unresolved {
		fmt.Fprintf(w, "  %s\n", key)
	}

	fmt.Fprintf(w, "suppressed: %s\n", humanize.Comma(int64(len(r.Suppressed))))
	for _, err := range r.Suppressed {
		fmt.Fprintf(w, "  %v\n", err)
	}
}

func serve(c *cli.Context) error {
	dc, err := newContext(c)
	if err != nil {
		return err
	}

	h, err := examples.Routes(dc)
	if err != nil {
		return err
	}

	addr := c.String(argListen)
	getLogger().Info("Listening on ", addr)
	return http.ListenAndServe(addr, h)
}

func typeName(bean any) string {
	if bean == nil {
		return "<nil>"
	}
	return reflect.TypeOf(bean).String()
}

func getLogger() log4g.Logger {
	return log4g.GetLogger("daggerok")
}
