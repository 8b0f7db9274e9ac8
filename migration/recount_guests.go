// migration/recount_guests.go
// Repair script for event guest counters. The counters are maintained
// transactionally with every guest write, but rows imported before the
// counter columns existed (or touched by hand in the DB) can drift.
//
// USAGE:
// 1. Call RecountAllEvents(db) from main.go or an admin endpoint
// 2. Or RecountEvent(db, eventID) for a single event

package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"partypass-api/utils"
)

type guestTally struct {
	Total    int
	Accepted int
	Declined int
	Pending  int
	Maybe    int
}

func tallyGuests(ctx context.Context, db *sql.DB, eventID string) (guestTally, error) {
	var t guestTally
	err := db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'accepted'),
			COUNT(*) FILTER (WHERE status = 'declined'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'maybe')
		FROM guests
		WHERE event_id = $1
	`, eventID).Scan(&t.Total, &t.Accepted, &t.Declined, &t.Pending, &t.Maybe)
	return t, err
}

// RecountEvent re-derives one event's counters from its guest rows.
func RecountEvent(db *sql.DB, eventID string) error {
	ctx := context.Background()

	tally, err := tallyGuests(ctx, db, eventID)
	if err != nil {
		return fmt.Errorf("failed to tally guests: %w", err)
	}

	return utils.WithTransaction(db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE events
			SET guest_count = $1,
			    accepted_count = $2,
			    declined_count = $3,
			    pending_count = $4,
			    maybe_count = $5,
			    updated_at = NOW()
			WHERE id = $6
		`, tally.Total, tally.Accepted, tally.Declined, tally.Pending, tally.Maybe, eventID)
		if err != nil {
			return fmt.Errorf("failed to update counters: %w", err)
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return fmt.Errorf("event %s not found", eventID)
		}
		return nil
	})
}

// RecountAllEvents walks every event and repairs counters that no longer
// match the guest rows. Events that already agree are left untouched.
func RecountAllEvents(db *sql.DB) error {
	ctx := context.Background()

	log.Println("🚀 Starting guest counter recount...")

	rows, err := db.QueryContext(ctx, `
		SELECT id, title, guest_count, accepted_count, declined_count, pending_count, maybe_count
		FROM events
		ORDER BY created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	type eventRow struct {
		id    string
		title string
		have  guestTally
	}
	var events []eventRow
	for rows.Next() {
		var e eventRow
		if err := rows.Scan(&e.id, &e.title, &e.have.Total, &e.have.Accepted,
			&e.have.Declined, &e.have.Pending, &e.have.Maybe); err != nil {
			return fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var repaired, skipped, errors int
	for _, e := range events {
		want, err := tallyGuests(ctx, db, e.id)
		if err != nil {
			log.Printf("❌ Failed to tally %s: %v", e.id, err)
			errors++
			continue
		}

		if want == e.have {
			skipped++
			continue
		}

		log.Printf("📦 Event %q (%s): counters %+v, guests say %+v", e.title, e.id, e.have, want)
		if err := RecountEvent(db, e.id); err != nil {
			log.Printf("  ❌ Repair failed: %v", err)
			errors++
			continue
		}
		repaired++
	}

	log.Printf("📊 Recount done: %d repaired, %d already correct, %d errors", repaired, skipped, errors)
	return nil
}
