package poller

import (
	"context"
	"net/http"
	"time"

	"github.com/jwulff/nightscoutbar-go/internal/bloodsugar"
	"github.com/jwulff/nightscoutbar-go/internal/config"
	"github.com/jwulff/nightscoutbar-go/internal/diagnostics"
	"github.com/jwulff/nightscoutbar-go/internal/nightscout"
	"github.com/jwulff/nightscoutbar-go/internal/state"
)

// attempt performs one fetch and describes its outcome. It never mutates
// shared state; the caller commits the returned update.
func (p *Poller) attempt(ctx context.Context, gen uint64, attemptID string) state.Update {
	diag := diagnostics.NewLog(p.cfg.MaxDiagnosticLines, p.cfg.MaxDiagnosticLine)
	update := state.Update{
		Generation: gen,
		AttemptID:  attemptID,
		Status:     diagnostics.StatusError,
	}
	finish := func() state.Update {
		update.At = p.cfg.Now()
		update.Diagnostics = diag.Lines()
		if n := diag.Dropped(); n > 0 {
			p.log.Debugw("diagnostics_dropped", "attempt", attemptID, "lines", n)
		}
		return update
	}

	settings, err := p.settings.Load(ctx)
	if err != nil {
		diag.Addf("Settings Error: %v", err)
		return finish()
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := nightscout.NewEntriesRequest(ctx, settings.ServerURL, settings.APISecret)
	if err != nil {
		diag.Addf("Request URL: %s", settings.ServerURL)
		diag.Addf("Invalid Request: %v", err)
		return finish()
	}
	diag.Addf("Request URL: %s", req.URL)

	p.log.Debugw("fetch_started", "attempt", attemptID, "generation", gen, "host", req.URL.Host)

	resp, err := p.fetcher.Do(req)
	if err != nil {
		diag.Addf("Network Request Error: %v", err)
		return finish()
	}
	completedAt := p.cfg.Now()

	statusOK := resp.StatusCode == http.StatusOK
	diag.Addf("Response Status Code: %d", resp.StatusCode)

	if len(resp.Body) == 0 {
		diag.Add("No data received in response")
		return finish()
	}
	diag.Addf("Raw Response Data: %s", resp.Body)

	reading, err := nightscout.ParseEntries(resp.Body)
	if err != nil {
		diag.Add(err.Error())
		return finish()
	}
	if !statusOK {
		diag.Addf("Entry decoded but ignored: %v", &nightscout.StatusError{StatusCode: resp.StatusCode})
		return finish()
	}

	update.Reading = p.convert(settings, reading, completedAt, diag)
	update.Status = diagnostics.StatusOK
	return finish()
}

// convert folds a parsed reading into display values. A timestamp that
// fails to parse is recorded and leaves the staleness suffix untouched.
func (p *Poller) convert(settings config.FetchConfig, reading nightscout.Reading, completedAt time.Time, diag *diagnostics.Log) *state.ReadingUpdate {
	value := bloodsugar.Convert(reading.Value, settings.DisplayInMmol, settings.ServerInMmol)
	mgdl := bloodsugar.ToMgdl(reading.Value, settings.ServerInMmol)

	ru := &state.ReadingUpdate{
		Value:         value,
		DisplayInMmol: settings.DisplayInMmol,
		TrendGlyph:    bloodsugar.MapTrendArrow(reading.Direction),
		Range:         bloodsugar.ClassifyRange(mgdl),
	}

	readingAt, err := bloodsugar.ParseServerTime(reading.DateString)
	if err != nil {
		diag.Addf("Timestamp Error: %v", err)
	} else {
		ru.Timestamp = &state.Timestamp{
			At:     readingAt,
			Suffix: bloodsugar.StalenessSuffix(readingAt, completedAt, p.cfg.Location),
		}
	}

	diag.Addf("Glucose: %s %s %s", bloodsugar.FormatValue(value, settings.DisplayInMmol),
		bloodsugar.UnitLabel(settings.DisplayInMmol), ru.TrendGlyph)
	return ru
}
