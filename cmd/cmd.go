package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/starshine-sys/gatecache/cmd/bot"
	"github.com/starshine-sys/gatecache/common"
)

var app = &cli.App{
	Name:    "Gatecache",
	Usage:   "TTL-bounded gateway state cache",
	Version: common.Version(),

	Commands: []*cli.Command{
		bot.Command,
	},
}

func Run() error {
	return app.Run(os.Args)
}
