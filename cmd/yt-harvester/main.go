package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/handiism/yt-harvester/internal/config"
	"github.com/handiism/yt-harvester/internal/console"
	"github.com/handiism/yt-harvester/internal/download"
	"github.com/handiism/yt-harvester/internal/http"
	"github.com/handiism/yt-harvester/internal/model"
	"github.com/handiism/yt-harvester/internal/youtube"
)

const exitCancelled = 130

// SingleCmd downloads one video to an explicit file.
type SingleCmd struct {
	VideoURL  string `arg:"--video-url" help:"watch URL on www.youtube.com"`
	DestFile  string `arg:"--dest-file" help:"output file; its extension decides the output type"`
	AudioOnly bool   `arg:"--audio-only" help:"download the audio stream only"`
}

// MassCmd harvests videos for every artist listed in a search file.
type MassCmd struct {
	SearchFile string `arg:"--search-file" help:"text file with one artist name per line"`
	DestDir    string `arg:"--dest-dir" help:"directory the files are written to"`
	Amount     int    `arg:"--amount" help:"videos to download per artist"`
	AudioOnly  bool   `arg:"--audio-only" help:"download audio only and save as .mp3"`
}

type args struct {
	Single *SingleCmd `arg:"subcommand:single" help:"download a single video"`
	Mass   *MassCmd   `arg:"subcommand:mass" help:"download videos for a list of artists"`

	Config   string `arg:"--config" help:"path to a JSON settings file"`
	Verbose  bool   `arg:"-v,--verbose" help:"show verbose output"`
	Playlist bool   `arg:"--playlist" help:"write a playlist of the downloaded files"`
	Tag      bool   `arg:"--tag" help:"write ID3 tags to audio-only output"`
	Workers  int    `arg:"--workers" help:"concurrent artists and downloads (overrides config)"`
}

func (args) Description() string {
	return "yt-harvester - batch download videos and audio from YouTube\n"
}

func main() {
	os.Exit(run())
}

func run() int {
	start := time.Now()

	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.WriteHelp(os.Stderr)
		return 1
	}

	out := console.New(os.Stdout, os.Stderr, a.Verbose)

	settings, err := loadSettings(a.Config)
	if err != nil {
		out.Error(err)
		return 1
	}
	applyFlags(settings, a)

	runCfg, err := runConfig(a, settings)
	if err != nil {
		out.Error(err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := youtube.NewClient(http.NewClient(settings.UserAgent, settings.RequestTimeout()))
	manager := download.NewManager(client, settings, out.Handle)

	out.Info("Starting %s run (%s)", runCfg.Kind, runCfg.Mode())

	if err := manager.Initialize(ctx, runCfg); err != nil {
		return fail(ctx, out, err, start)
	}
	for _, summary := range manager.ArtistSummaries() {
		out.Handle(model.ProgressEvent{Level: model.LevelVerbose, Message: summary})
	}

	report, err := manager.StartDownloads(ctx)
	if err != nil {
		return fail(ctx, out, err, start)
	}

	out.Summary(report, time.Since(start))
	return 0
}

func fail(ctx context.Context, out *console.Renderer, err error, start time.Time) int {
	if ctx.Err() != nil || download.IsCancelled(err) {
		out.Info("Download cancelled.")
		out.Summary(nil, time.Since(start))
		return exitCancelled
	}
	out.Error(err)
	return 1
}

func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		return config.DefaultSettings(), nil
	}
	return config.Load(path)
}

func applyFlags(settings *config.Settings, a args) {
	if a.Playlist {
		settings.CreatePlaylist = true
	}
	if a.Tag {
		settings.TagAudio = true
	}
	if a.Workers > 0 {
		settings.MaxConcurrentArtists = a.Workers
		settings.MaxConcurrentDownloads = a.Workers
	}
}

func runConfig(a args, settings *config.Settings) (model.RunConfig, error) {
	if a.Single != nil {
		return config.NewSingleRun(a.Single.VideoURL, a.Single.DestFile, a.Single.AudioOnly)
	}
	return config.NewBatchRun(a.Mass.SearchFile, a.Mass.DestDir, a.Mass.Amount, a.Mass.AudioOnly, settings)
}
