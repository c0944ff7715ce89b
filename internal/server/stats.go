package server

import (
	"context"
	"log/slog"

	"github.com/basher83/zammad-mcp/internal/models"
)

// maxStatsPages bounds the full-instance scan. At 100 tickets per page
// this covers 100k tickets before the result is marked truncated.
const (
	maxStatsPages    = 1000
	statsScanPerPage = 100
)

// state type ids as Zammad defines them
const (
	stateTypeNew             = 1
	stateTypeOpen            = 2
	stateTypeClosed          = 3
	stateTypePendingReminder = 4
	stateTypePendingClose    = 5
)

// ticketStats pages through tickets and aggregates counts. Tickets in
// new or open states count as open, pending states as pending, and a
// ticket is escalated when any escalation timestamp is set.
func (s *Server) ticketStats(ctx context.Context, params models.TicketStatsParams) (*models.TicketStats, error) {
	typeByID, typeByName, err := s.cache.stateTypes(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.TicketStats{}
	for page := 1; page <= maxStatsPages; page++ {
		tickets, err := s.client.ListTickets(ctx, page, statsScanPerPage)
		if err != nil {
			return nil, err
		}
		for i := range tickets {
			t := &tickets[i]
			if params.Group != "" && t.Group.DisplayName() != params.Group {
				continue
			}
			if params.State != "" && t.State.DisplayName() != params.State {
				continue
			}
			stats.TotalCount++
			switch stateType(t, typeByID, typeByName) {
			case stateTypeNew, stateTypeOpen:
				stats.OpenCount++
			case stateTypeClosed:
				stats.ClosedCount++
			case stateTypePendingReminder, stateTypePendingClose:
				stats.PendingCount++
			}
			if isEscalated(t) {
				stats.EscalatedCount++
			}
		}
		if len(tickets) < statsScanPerPage {
			return stats, nil
		}
	}

	slog.Warn("ticket stats scan hit the page cap, counts are partial",
		"pages", maxStatsPages, "per_page", statsScanPerPage)
	stats.Truncated = true
	stats.Note = "Scan stopped at the page cap; counts cover only the scanned tickets."
	return stats, nil
}

// stateType resolves a ticket's state type id from whichever shape the
// state field carries, falling back to the state_id column.
func stateType(t *models.Ticket, byID map[int]int, byName map[string]int) int {
	if st, ok := t.State.StateTypeID(); ok {
		return st
	}
	if name := t.State.Label(); name != "" {
		if st, ok := byName[name]; ok {
			return st
		}
	}
	if id, ok := t.State.ID(); ok {
		if st, ok := byID[id]; ok {
			return st
		}
	}
	return byID[t.StateID]
}

func isEscalated(t *models.Ticket) bool {
	return t.FirstResponseEscalationAt != nil ||
		t.CloseEscalationAt != nil ||
		t.UpdateEscalationAt != nil
}
