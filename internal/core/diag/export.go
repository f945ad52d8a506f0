package diag

import (
	"encoding/json"
	"errors"

	"github.com/atotto/clipboard"
)

func systemClipboard(text string) error {
	if clipboard.Unsupported {
		return errUnsupported
	}
	return clipboard.WriteAll(text)
}

var errUnsupported = errors.New("clipboard unsupported on this host")

// ExportJSON renders the history, newest first
func (r *Recorder) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(r.History(), "", "  ")
}

// CopyLastToClipboard writes the newest report to the clipboard; any failure reports false
func (r *Recorder) CopyLastToClipboard() (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn().Interface("panic", p).Msg(LogPrefix + " clipboard panic")
			ok = false
		}
	}()
	last, found := r.Last()
	if !found || r.clip == nil {
		return false
	}
	raw, err := json.MarshalIndent(last, "", "  ")
	if err != nil {
		return false
	}
	if err := r.clip(string(raw)); err != nil {
		r.log.Debug().Err(err).Msg(LogPrefix + " clipboard unavailable")
		return false
	}
	return true
}
