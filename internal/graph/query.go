package graph

import (
	"context"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"github.com/gdg-garage/convention-booking/internal/auth"
	"github.com/gdg-garage/convention-booking/internal/models"
	"github.com/gdg-garage/convention-booking/internal/store"
)

const cursorPrefix = "arrayconnection:"

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// decodeCursor returns -1 for cursors it does not understand.
func decodeCursor(cursor string) int {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return -1
	}
	offset, err := strconv.Atoi(strings.TrimPrefix(string(raw), cursorPrefix))
	if err != nil || !strings.HasPrefix(string(raw), cursorPrefix) {
		return -1
	}
	return offset
}

type pageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     *string
	EndCursor       *string
}

type eventEdge struct {
	Node   *eventResolver
	Cursor string
}

type eventConnection struct {
	Edges      []*eventEdge
	PageInfo   *pageInfo
	TotalCount int32
}

type allEventsArgs struct {
	First *int32
	After *string
}

func (r *Resolver) AllEvents(ctx context.Context, args allEventsArgs) (*eventConnection, error) {
	events, err := r.store.LoadEvents(ctx, store.Everyone)
	if err != nil {
		return nil, err
	}

	start := 0
	if args.After != nil {
		if offset := decodeCursor(*args.After); offset >= 0 {
			start = offset + 1
		}
	}
	if start > len(events) {
		start = len(events)
	}
	end := len(events)
	if args.First != nil {
		if *args.First < 0 {
			return nil, errors.New("argument first must be non-negative")
		}
		if start+int(*args.First) < end {
			end = start + int(*args.First)
		}
	}

	conn := &eventConnection{
		Edges: make([]*eventEdge, 0, end-start),
		PageInfo: &pageInfo{
			HasNextPage:     end < len(events),
			HasPreviousPage: start > 0,
		},
		TotalCount: int32(len(events)),
	}
	for i := start; i < end; i++ {
		conn.Edges = append(conn.Edges, &eventEdge{
			Node:   r.event(events[i]),
			Cursor: encodeCursor(i),
		})
	}
	if len(conn.Edges) > 0 {
		conn.PageInfo.StartCursor = &conn.Edges[0].Cursor
		conn.PageInfo.EndCursor = &conn.Edges[len(conn.Edges)-1].Cursor
	}
	return conn, nil
}

// AllBookings lists the bookings of the events the caller administrates.
// Anonymous callers see nothing.
func (r *Resolver) AllBookings(ctx context.Context) ([]*bookingResolver, error) {
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		return []*bookingResolver{}, nil
	}
	actor := store.ActorFor(*user)

	bookings, err := r.store.ListBookings(ctx, actor, store.BookingFilter{})
	if err != nil {
		return nil, err
	}
	events, err := r.store.LoadEvents(ctx, actor)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*eventResolver, len(events))
	for _, e := range events {
		byID[e.ID] = r.event(e)
	}

	res := make([]*bookingResolver, 0, len(bookings))
	for _, b := range bookings {
		event, ok := byID[b.EventID]
		if !ok {
			event = r.event(b.Event)
		}
		res = append(res, &bookingResolver{b: b, event: event})
	}
	return res, nil
}

func (r *Resolver) Event(ctx context.Context, args struct{ ID *int32 }) (*eventResolver, error) {
	if args.ID == nil || *args.ID <= 0 {
		return nil, nil
	}
	event, err := r.store.GetEvent(ctx, store.Everyone, uint(*args.ID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.event(*event), nil
}

func (r *Resolver) event(e models.Event) *eventResolver {
	return &eventResolver{e: e, files: r.files}
}
