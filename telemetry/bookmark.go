package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkAirborne      BookmarkType = "airborne"
	BookmarkHardLanding   BookmarkType = "hard_landing"
	BookmarkTractionLimit BookmarkType = "traction_limit"
	BookmarkSettled       BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Kart        string       `csv:"kart"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"kart", b.Kart,
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in one kart's run.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	settledWindowsCount int  // consecutive windows at rest on the ground
	settledReported     bool // settled triggers once until disturbed
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for settle detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Airborne: most wheel-ticks off the ground after a grounded window
		if b := bd.checkAirborne(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Hard landing: touchdowns with compression spread > 2x rolling average
		if b := bd.checkHardLanding(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Traction limit: tires clamped most of the window after mostly gripping
		if b := bd.checkTractionLimit(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Settled: all wheels down with a still chassis for 5 windows
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Update history
	bd.addToHistory(stats)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// previous returns the most recently added window.
func (bd *BookmarkDetector) previous() WindowStats {
	idx := (bd.historyIdx - 1 + bd.historySize) % bd.historySize
	return bd.history[idx]
}

func (bd *BookmarkDetector) checkAirborne(stats WindowStats) *Bookmark {
	prev := bd.previous()
	if prev.ContactFraction > 0.75 && stats.ContactFraction < 0.25 {
		return &Bookmark{
			Type:        BookmarkAirborne,
			Kart:        stats.Kart,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Contact dropped from %.0f%% to %.0f%%", prev.ContactFraction*100, stats.ContactFraction*100),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkHardLanding(stats WindowStats) *Bookmark {
	if stats.Touchdowns < 2 {
		return nil
	}

	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	// Calculate rolling average compression spread
	var total float64
	for _, h := range history {
		total += h.CompressionStd
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.CompressionStd > avg*2.0 && stats.CompressionStd > 0.01 {
		return &Bookmark{
			Type:        BookmarkHardLanding,
			Kart:        stats.Kart,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Compression std %.3f is %.1fx average (%.3f) over %d touchdowns", stats.CompressionStd, stats.CompressionStd/avg, avg, stats.Touchdowns),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkTractionLimit(stats WindowStats) *Bookmark {
	prev := bd.previous()
	if prev.ClampFraction < 0.1 && stats.ClampFraction > 0.5 {
		return &Bookmark{
			Type:        BookmarkTractionLimit,
			Kart:        stats.Kart,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Friction limit hit on %.0f%% of wheel-ticks (was %.0f%%)", stats.ClampFraction*100, prev.ClampFraction*100),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	still := stats.ContactFraction == 1 && stats.HeightStd < 0.002 && stats.SpeedMax < 0.05
	if !still {
		bd.settledWindowsCount = 0
		bd.settledReported = false
		return nil
	}

	bd.settledWindowsCount++
	if bd.settledWindowsCount >= 5 && !bd.settledReported {
		bd.settledReported = true
		return &Bookmark{
			Type:        BookmarkSettled,
			Kart:        stats.Kart,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("At rest at height %.3f over %d windows", stats.HeightMean, bd.settledWindowsCount),
		}
	}
	return nil
}
