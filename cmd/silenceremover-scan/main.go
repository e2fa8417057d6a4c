package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/kpcee/deadbeef-silence-remover/pkg/audio"
	"github.com/kpcee/deadbeef-silence-remover/pkg/host"
	"github.com/kpcee/deadbeef-silence-remover/pkg/host/local"
	"github.com/kpcee/deadbeef-silence-remover/pkg/silenceremover"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
)

const configPollInterval = time.Second

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	configPath := pflag.String("config", "", "path to a YAML file with the configuration values; it is watched for changes in the realtime mode")
	startThreshold := pflag.Int("start", silenceremover.DefaultStartThreshold, "intro loudness threshold, -1 disables the intro skip")
	middleThreshold := pflag.Int("middle", silenceremover.DefaultMiddleThreshold, "middle loudness threshold, -1 disables the middle skip")
	endThreshold := pflag.Int("end", silenceremover.DefaultEndThreshold, "outro loudness threshold, -1 disables the end skip")
	loopMode := host.LoopModeOff
	pflag.Var(&loopMode, "loop", "playlist loop mode: off, all or single")
	chunkFrames := pflag.Int("chunk-frames", local.DefaultChunkFrames, "amount of frames per buffer tick")
	realtime := pflag.Bool("realtime", false, "pace the ticks as a real player would")
	maxTrackStarts := pflag.Int("max-track-starts", 0, "stop after that many track starts, 0 means until the playlist is over")
	pcmFormat := local.DefaultRawFormat.PCMFormat
	pflag.Var(&pcmFormat, "pcm-format", "sample format of raw PCM files")
	pcmChannels := pflag.Uint("pcm-channels", uint(local.DefaultRawFormat.Channels), "amount of channels of raw PCM files")
	pcmRate := pflag.Uint("pcm-rate", uint(local.DefaultRawFormat.SampleRate), "sample rate of raw PCM files")
	outputPath := pflag.String("output", "", "write the played audio (without the skipped parts) as raw PCM to this file")
	outputFormat := audio.PCMFormatFloat32LE
	pflag.Var(&outputFormat, "output-format", "sample format of the --output file")
	pflag.Parse()

	if pflag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <audio file> [<audio file> ...]\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func(ctx context.Context) { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	// flags override the config file, and without a config file they
	// are the configuration
	overrides := map[string]int{}
	for _, override := range []struct {
		Flag  string
		Key   string
		Value int
	}{
		{"start", silenceremover.ConfigKeyStartThreshold, *startThreshold},
		{"middle", silenceremover.ConfigKeyMiddleThreshold, *middleThreshold},
		{"end", silenceremover.ConfigKeyEndThreshold, *endThreshold},
		{"loop", host.ConfigKeyLoopMode, int(loopMode)},
	} {
		if *configPath == "" || pflag.CommandLine.Changed(override.Flag) {
			overrides[override.Key] = override.Value
		}
	}
	withOverrides := func(values map[string]int) map[string]int {
		result := make(map[string]int, len(values)+len(overrides))
		for k, v := range values {
			result[k] = v
		}
		for k, v := range overrides {
			result[k] = v
		}
		return result
	}

	config := map[string]int{}
	if *configPath != "" {
		var err error
		config, err = local.LoadConfigFile(*configPath)
		assertNoError(err)
	}

	options := local.Options{
		ChunkFrames:    *chunkFrames,
		Realtime:       *realtime,
		MaxTrackStarts: *maxTrackStarts,
		OutputFormat:   outputFormat,
	}
	if *outputPath != "" {
		output, err := os.Create(*outputPath)
		assertNoError(err)
		defer func() {
			assertNoError(output.Close())
		}()
		options.Output = output
	}
	player := local.New(options, withOverrides(config))

	rawFormat := local.RawFormat{
		PCMFormat:  pcmFormat,
		Channels:   audio.Channel(*pcmChannels),
		SampleRate: audio.SampleRate(*pcmRate),
	}
	for _, path := range pflag.Args() {
		track, err := local.LoadTrack(ctx, path, rawFormat)
		assertNoError(err)
		player.AddTrack(track)
	}

	assertNoError(player.LoadPlugins(ctx))
	defer func() {
		assertNoError(player.Close(ctx))
	}()

	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()
	if *configPath != "" && *realtime {
		watcher := local.NewConfigWatcher(*configPath, configPollInterval, func(ctx context.Context, values map[string]int) {
			player.ReplaceConfig(ctx, withOverrides(values))
		})
		observability.Go(ctx, func(ctx context.Context) {
			if err := watcher.Serve(ctx); err != nil && ctx.Err() == nil {
				logger.Errorf(ctx, "config watcher stopped: %v", err)
			}
		})
	}

	logger.Infof(ctx, "started")
	assertNoError(player.Run(ctx))

	actions := player.Actions()
	for _, action := range actions {
		fmt.Println(action)
	}
	logger.Infof(ctx, "done, %d actions", len(actions))
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
