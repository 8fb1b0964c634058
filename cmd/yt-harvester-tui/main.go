package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/handiism/yt-harvester/internal/config"
	"github.com/handiism/yt-harvester/internal/http"
	"github.com/handiism/yt-harvester/internal/platform"
	"github.com/handiism/yt-harvester/internal/tui"
	"github.com/handiism/yt-harvester/internal/youtube"
)

type args struct {
	Config string `arg:"--config" help:"path to a JSON settings file"`
}

func (args) Description() string {
	return "yt-harvester-tui - interactive batch harvester\n"
}

func main() {
	var a args
	arg.MustParse(&a)

	settings := config.DefaultSettings()
	if a.Config != "" {
		var err error
		settings, err = config.Load(a.Config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR]: %v\n", err)
			os.Exit(1)
		}
	}

	newClient := func(s *config.Settings) platform.Client {
		return youtube.NewClient(http.NewClient(s.UserAgent, s.RequestTimeout()))
	}

	if err := tui.Run(settings, newClient); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR]: %v\n", err)
		os.Exit(1)
	}
}
