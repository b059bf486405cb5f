package rpc

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sss-org/sss-engine/types"
)

type (
	eventJournal interface {
		List(from uint64, limit int) ([]*types.EventRecord, error)
		LastSeq() uint64
	}

	EventsResponse struct {
		Events  []*EventRecordJSON `json:"events"`
		LastSeq uint64             `json:"last_seq"`
	}

	EventRecordJSON struct {
		Seq       uint64         `json:"seq"`
		Type      string         `json:"type"`
		Mint      types.Identity `json:"mint"`
		Command   string         `json:"command"`
		Timestamp uint64         `json:"timestamp"`
		Event     types.Event    `json:"event"`
	}
)

/*
EventEndpoints registers the endpoint for reading the event journal:

	GET /events?from=N&limit=M

returns records with sequence number N and greater, "from" defaults to 1.
*/
func EventEndpoints(journal eventJournal, log *slog.Logger, opts ...Option) RegistrarFunc {
	options := defaultOptions()
	for _, o := range opts {
		o(options)
	}
	return func(r *mux.Router) {
		r.HandleFunc("/events", listEvents(journal, options.maxEventsPageSize, log)).Methods(http.MethodGet, http.MethodOptions)
	}
}

func listEvents(journal eventJournal, maxPageSize int, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := queryUint64(r, "from", 1)
		if err != nil {
			writeError(w, r, err, log)
			return
		}
		limit, err := queryUint64(r, "limit", uint64(maxPageSize)) /* #nosec G115 page size is positive */
		if err != nil {
			writeError(w, r, err, log)
			return
		}
		if limit == 0 || limit > uint64(maxPageSize) || limit > math.MaxInt32 {
			limit = uint64(maxPageSize)
		}
		lastSeq := journal.LastSeq()
		records, err := journal.List(from, int(limit)) /* #nosec G115 limit is capped to page size */
		if err != nil {
			writeError(w, r, fmt.Errorf("reading event journal: %w", err), log)
			return
		}
		rsp, err := NewEventsResponse(records, lastSeq)
		if err != nil {
			writeError(w, r, err, log)
			return
		}
		writeJSON(w, r, http.StatusOK, rsp, log)
	}
}

// NewEventsResponse decodes the event payloads of the journal records.
func NewEventsResponse(records []*types.EventRecord, lastSeq uint64) (*EventsResponse, error) {
	rsp := &EventsResponse{Events: make([]*EventRecordJSON, 0, len(records)), LastSeq: lastSeq}
	for _, rec := range records {
		ev, err := rec.Event()
		if err != nil {
			return nil, fmt.Errorf("decoding event %d: %w", rec.Seq, err)
		}
		rsp.Events = append(rsp.Events, &EventRecordJSON{
			Seq:       rec.Seq,
			Type:      rec.Type,
			Mint:      rec.Mint,
			Command:   rec.Command,
			Timestamp: rec.Timestamp,
			Event:     ev,
		})
	}
	return rsp, nil
}
