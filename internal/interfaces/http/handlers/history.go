package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/domain/tier"
)

// historyEntry is the transport shape of one plan change record.
type historyEntry struct {
	ID            uint      `json:"id"`
	PreviousPlan  string    `json:"previous_plan"`
	NewPlan       string    `json:"new_plan"`
	ChangeReason  string    `json:"change_reason"`
	EffectiveDate time.Time `json:"effective_date"`
	Notes         string    `json:"notes,omitempty"`
}

func historyEntries(entries []*tier.History) []historyEntry {
	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{
			ID:            e.ID(),
			PreviousPlan:  e.PreviousPlan().String(),
			NewPlan:       e.NewPlan().String(),
			ChangeReason:  string(e.ChangeReason()),
			EffectiveDate: e.EffectiveDate(),
			Notes:         e.Notes(),
		})
	}
	return out
}

// queryInt reads an integer query parameter with a fallback default.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
