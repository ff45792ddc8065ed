package cmd

import (
	"io"
	"os"

	"github.com/henri123lemoine/liveline/internal/config"
	"github.com/henri123lemoine/liveline/internal/debug"
	"github.com/henri123lemoine/liveline/internal/render"
	"github.com/henri123lemoine/liveline/internal/term"
)

// startRenderer starts a renderer on w configured from cfg. The returned
// stop func shuts it down and releases the lock file, if any.
func startRenderer(w io.Writer, cfg *config.Config) (*render.Renderer, func() error, error) {
	log := debug.Default()
	if f, ok := w.(*os.File); ok && !term.IsTerminal(f) {
		log.Log("output is not a terminal; frames are written as raw escapes", "fd", f.Fd())
	}

	opts := []render.Option{
		render.WithInterval(cfg.Interval()),
		render.WithLogger(log),
	}
	if cfg.Render.Charset != "" {
		opts = append(opts, render.WithCharset(cfg.Render.Charset))
	}

	var fileLock *term.FileLock
	if cfg.Render.LockFile != "" {
		l, err := term.NewFileLock(cfg.Render.LockFile, nil)
		if err != nil {
			return nil, nil, err
		}
		l.OnError = func(err error) {
			log.Error("lock file unavailable", err, "path", l.Path())
		}
		fileLock = l
		opts = append(opts, render.WithLocker(fileLock))
	}

	r, err := render.New(w, opts...)
	if err != nil {
		if fileLock != nil {
			_ = fileLock.Close()
		}
		return nil, nil, err
	}

	stop := func() error {
		err := r.Shutdown()
		if fileLock != nil {
			_ = fileLock.Close()
		}
		return err
	}
	return r, stop, nil
}

// outputWidth returns the terminal width behind w, or fallback when w is
// not a file.
func outputWidth(w io.Writer, fallback int) int {
	if f, ok := w.(*os.File); ok {
		return term.Width(f, fallback)
	}
	return fallback
}
