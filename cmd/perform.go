package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/stagekit/stagekit/config"
	"github.com/stagekit/stagekit/fetch"
	"github.com/stagekit/stagekit/log"
	"github.com/stagekit/stagekit/perform"
	"github.com/stagekit/stagekit/sliceutil"
	"github.com/stagekit/stagekit/song"
	"github.com/stagekit/stagekit/source"
	"github.com/stagekit/stagekit/tui"
)

func performAction(cliCtx *cli.Context) error {
	ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.NewPacked(os.Stderr).Level(zerolog.InfoLevel)

	cfg, err := loadConfig(cliCtx, logger)
	if nil != err {
		return err
	}

	list, err := resolveSetlist(cliCtx, cfg, logger)
	if nil != err {
		return err
	}
	if list.Len() == 0 {
		return errors.New("setlist has no songs")
	}

	client := fetch.NewClient(cfg.Fetch.Timeout.Std(), logger)
	session := perform.NewSession(list, perform.Options{
		StartIndex: cliCtx.Int(flagStartIndex),
		Cache:      cfg.Cache,
		Preload:    cfg.Preload,
		Fetcher:    client.Fetch,
		OnUpdate:   nil,
	}, logger)
	defer session.Close()

	go func() {
		<-ctx.Done()
		session.Close()
	}()

	return tui.Run(session)
}

func resolveSetlist(cliCtx *cli.Context, cfg *config.Config, logger zerolog.Logger) (*song.Setlist, error) {
	setlistFile := cliCtx.String(flagSetlistFile)
	setlistID := cliCtx.String(flagSetlistID)
	songID := cliCtx.String(flagSongID)

	switch {
	case setlistFile != "":
		return source.SetlistFromFile(setlistFile)
	case setlistID != "":
		src, err := source.NewHTTPSource(cfg.Source, logger)
		if nil != err {
			return nil, err
		}
		return src.LoadSetlist(cliCtx.Context, setlistID)
	case songID != "":
		src, err := source.NewHTTPSource(cfg.Source, logger)
		if nil != err {
			return nil, err
		}
		s, err := src.LoadSong(cliCtx.Context, songID)
		if nil != err {
			return nil, err
		}
		return song.Single(*s), nil
	default:
		return nil, errors.New("specify a setlist file, a setlist ID, or a song ID")
	}
}

func inspect(cliCtx *cli.Context) error {
	list, err := source.SetlistFromFile(cliCtx.String(flagSetlistFile))
	if nil != err {
		return err
	}

	lines := sliceutil.Map(list.Songs, func(s song.Song) string {
		kind := "text"
		if _, ok := s.Fingerprint(); ok {
			kind = "binary"
		} else if _, empty := s.Content.(song.EmptyContent); empty {
			kind = "empty"
		}
		return fmt.Sprintf("%s - %s [%s, %s]", s.Title, s.Artist, s.Type, kind)
	})

	fmt.Printf("%s (%d songs)\n", list.Title, list.Len())
	fmt.Println(strings.Join(lines, "\n"))
	return nil
}
