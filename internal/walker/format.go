package walker

import (
	"errors"
	"fmt"
	"time"

	"github.com/thebtf/catwalk/pkg/models"
)

// TimeLayout is how walk timestamps are shown to the user.
const TimeLayout = "2006-01-02 15:04:05"

// StillWalking is shown in place of an end time for open walks.
const StillWalking = "still walking..."

// User-facing messages shared by the web form, the TUI and the CLI.
const (
	MsgDuplicate = "Cat is already registered."
	MsgReset     = "Data reset."
	MsgNoWalks   = "No walks recorded."
	MsgNoCats    = "No cats registered yet."
	MsgUnknown   = "Unknown cat."
)

// FormatTime renders t in local time using TimeLayout.
func FormatTime(t time.Time) string {
	return t.Local().Format(TimeLayout)
}

// FormatHistoryLine renders one history entry as "<name>: <start> - <end>".
func FormatHistoryLine(e models.HistoryEntry) string {
	end := StillWalking
	if e.EndedAt != nil {
		end = FormatTime(*e.EndedAt)
	}
	return fmt.Sprintf("%s: %s - %s", e.Name, FormatTime(e.StartedAt), end)
}

// StateLabel is the toggle label combining the cat's name with its state.
func StateLabel(c models.CatState) string {
	switch c.State() {
	case models.StateWalking:
		return c.Name + " is walking"
	default:
		return c.Name + " is not walking"
	}
}

// FormatElapsed renders a walk length as "45m" or "1h05m", rounded down to the minute.
func FormatElapsed(d time.Duration) string {
	if d < time.Minute {
		return "<1m"
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

// AddedMessage confirms a registration.
func AddedMessage(name string) string {
	return fmt.Sprintf("Added %s.", name)
}

// TransitionMessage confirms a toggle. Returns "" for TransitionNone.
func TransitionMessage(name string, t models.Transition) string {
	switch t {
	case models.TransitionStarted:
		return name + " started walking."
	case models.TransitionEnded:
		return name + " stopped walking."
	default:
		return ""
	}
}

// ErrorMessage turns a domain error into the sentence shown to the user.
// ok is false for errors with no user-facing wording.
func ErrorMessage(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, models.ErrDuplicateName):
		return MsgDuplicate, true
	case errors.Is(err, models.ErrEmptyName):
		return "Cat name is empty.", true
	case errors.Is(err, models.ErrNameTooLong):
		return fmt.Sprintf("Cat name is too long (max %d characters).", models.MaxNameLength), true
	case errors.Is(err, models.ErrCatNotFound):
		return MsgUnknown, true
	default:
		return "", false
	}
}
