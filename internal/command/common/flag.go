package common

import (
	"net/url"

	"github.com/bornholm/weekplan/pkg/client"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

const (
	paramServer   = "server"
	paramUsername = "username"
	paramPassword = "password"
	paramJSON     = "json"
)

var (
	flagServer = altsrc.NewStringFlag(&cli.StringFlag{
		Name:    paramServer,
		Aliases: []string{"s"},
		EnvVars: []string{"WEEKPLAN_CLI_SERVER"},
		Value:   "http://localhost:3003",
		Usage:   "Weekplan server base url",
	})
	flagUsername = altsrc.NewStringFlag(&cli.StringFlag{
		Name:    paramUsername,
		EnvVars: []string{"WEEKPLAN_CLI_USERNAME"},
		Usage:   "Basic auth username",
	})
	flagPassword = altsrc.NewStringFlag(&cli.StringFlag{
		Name:    paramPassword,
		EnvVars: []string{"WEEKPLAN_CLI_PASSWORD"},
		Usage:   "Basic auth password",
	})
	flagJSON = &cli.BoolFlag{
		Name:  paramJSON,
		Usage: "Print raw JSON instead of a table",
	}
)

func WithCommonFlags(flags ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		flagServer,
		flagUsername,
		flagPassword,
		flagJSON,
	}, flags...)
}

// ConfigSource loads flag values from the yaml file given with the global
// --config flag, if any.
func ConfigSource(flags []cli.Flag) cli.BeforeFunc {
	return altsrc.InitInputSourceWithContext(flags, func(ctx *cli.Context) (altsrc.InputSourceContext, error) {
		if ctx.String("config") == "" {
			return altsrc.NewMapInputSource("", map[any]any{}), nil
		}

		return altsrc.NewYamlSourceFromFlagFunc("config")(ctx)
	})
}

func GetWeekplanClient(ctx *cli.Context) (*client.Client, error) {
	rawServerURL := ctx.String(paramServer)

	serverURL, err := url.Parse(rawServerURL)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if username := ctx.String(paramUsername); username != "" {
		serverURL.User = url.UserPassword(username, ctx.String(paramPassword))
	}

	return client.New(
		client.WithBaseURL(serverURL),
	), nil
}

func IsJSONOutput(ctx *cli.Context) bool {
	return ctx.Bool(paramJSON)
}
