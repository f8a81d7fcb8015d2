package ops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Sv443/WHDL/internal/api"
	"github.com/Sv443/WHDL/internal/logger"
)

var dlLog = logger.New("download")

// Download fetches url to rawPath. The parent directory is created if
// absent. If the fetch outlives the early-reply window the call returns
// success while the transfer keeps running in the background; a failure
// after that point is only surfaced to the log, since nobody is listening
// for the outcome anymore.
func (o *Ops) Download(url, rawPath, clientIP string) error {
	if url == "" {
		return badRequest("URL required")
	}
	path, err := o.policy.Resolve(rawPath)
	if err != nil {
		return fromPolicy(err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return internal(err)
	}

	type result struct {
		size int64
		err  error
	}
	done := make(chan result, 1)
	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		size, err := o.fetch(url, path)
		done <- result{size: size, err: err}
	}()

	// One-shot race between completion and the early-reply window: whichever
	// arrives first produces the HTTP answer, exactly once.
	select {
	case res := <-done:
		if res.err != nil {
			return internal(res.err)
		}
		o.logCreated(clientIP, url, path, res.size)
		return nil
	case <-time.After(o.opts.EarlyReply):
		o.bg.Add(1)
		go func() {
			defer o.bg.Done()
			res := <-done
			if res.err != nil {
				dlLog.Warn("background download of %s to %s failed: %v", url, path, res.err)
				return
			}
			o.logCreated(clientIP, url, path, res.size)
		}()
		return nil
	}
}

// fetch performs the HTTP transfer and writes the body to path, returning
// the number of bytes written.
func (o *Ops) fetch(url, path string) (int64, error) {
	resp, err := o.client.Get(url) //nolint:noctx // must outlive the caller's request context
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("remote returned %s", resp.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func (o *Ops) logCreated(clientIP, url, path string, size int64) {
	if !o.opts.LogCreatedFiles {
		return
	}
	dlLog.Info("%s downloaded %s to %s (%s)", api.MaskIP(clientIP), url, path, formatSize(size))
}

// formatSize renders a byte count in KiB below 0.5 MiB, MiB above.
func formatSize(n int64) string {
	const half = 512 * 1024
	if n >= half {
		return fmt.Sprintf("%.2f MiB", float64(n)/(1<<20))
	}
	return fmt.Sprintf("%.2f KiB", float64(n)/1024)
}
