// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/vechain/swell/api/events"
	"github.com/vechain/swell/api/utils"
	"github.com/vechain/swell/log"
	"github.com/vechain/swell/logdb"
	"github.com/vechain/swell/tx"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// receipts buffered per subscriber before it is dropped
	subscriberBuffer = 256
	// max events replayed from the log db on subscribe
	backtraceLimit = 1000
)

// Message is one event pushed to a subscriber.
type Message struct {
	Subscription string `json:"subscription"`
	*events.FilteredEvent
}

type subscriber struct {
	id       string
	criteria *logdb.EventCriteria
	ch       chan *tx.Receipt
	dropped  chan struct{}
}

// Subscriptions streams events of executed calls over websocket. It is registered as a runtime sink.
type Subscriptions struct {
	db       *logdb.LogDB
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup

	lock   sync.Mutex
	subs   map[string]*subscriber
	closed bool
}

func New(db *logdb.LogDB, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		db: db,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
		subs: make(map[string]*subscriber),
	}
}

// Publish fans the receipt out to subscribers. A subscriber that cannot keep up is dropped.
func (s *Subscriptions) Publish(receipt *tx.Receipt) error {
	if receipt.Reverted || len(receipt.Events) == 0 {
		return nil
	}
	s.lock.Lock()
	defer s.lock.Unlock()

	for id, sub := range s.subs {
		select {
		case sub.ch <- receipt:
		default:
			logger.Debug("dropping slow subscriber", "id", id)
			close(sub.dropped)
			delete(s.subs, id)
		}
	}
	return nil
}

func (s *Subscriptions) subscribe(criteria *logdb.EventCriteria) (*subscriber, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return nil, errors.New("subscriptions closed")
	}
	sub := &subscriber{
		id:       uuid.New(),
		criteria: criteria,
		ch:       make(chan *tx.Receipt, subscriberBuffer),
		dropped:  make(chan struct{}),
	}
	s.subs[sub.id] = sub
	s.wg.Add(1)
	metricSubscriptionCount().Add(1)
	return sub, nil
}

func (s *Subscriptions) unsubscribe(sub *subscriber) {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.subs, sub.id)
	s.wg.Done()
	metricSubscriptionCount().Add(-1)
}

// Len returns the number of live subscribers.
func (s *Subscriptions) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.subs)
}

func match(criteria *logdb.EventCriteria, fe *events.FilteredEvent) bool {
	if criteria.Address != nil && *criteria.Address != fe.Address {
		return false
	}
	for i, topic := range criteria.Topics {
		if topic == nil {
			continue
		}
		if i >= len(fe.Topics) || *fe.Topics[i] != *topic {
			return false
		}
	}
	return true
}

// backtrace loads the stored events after pos matching the criteria.
func (s *Subscriptions) backtrace(ctx context.Context, criteria *logdb.EventCriteria, pos uint64) ([]*events.FilteredEvent, error) {
	evs, err := s.db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{criteria},
		Range:       &logdb.Range{Unit: logdb.Seq, From: pos + 1, To: logdbMaxSeq},
		Options:     &logdb.Options{Limit: backtraceLimit + 1},
	})
	if err != nil {
		return nil, err
	}
	if len(evs) > backtraceLimit {
		return nil, utils.HTTPError(errors.New("pos: backtrace limit exceeded"), http.StatusForbidden)
	}
	result := make([]*events.FilteredEvent, 0, len(evs))
	for _, ev := range evs {
		result = append(result, events.ConvertEvent(ev))
	}
	return result, nil
}

func (s *Subscriptions) handleSubjectEvent(w http.ResponseWriter, req *http.Request) error {
	criteria, err := events.ParseCriteria(req.URL.Query())
	if err != nil {
		return err
	}
	var pos *uint64
	if p := req.URL.Query().Get("pos"); p != "" {
		v, err := parsePos(p)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "pos"))
		}
		pos = &v
	}

	// subscribe before the backtrace so no receipt falls in between
	sub, err := s.subscribe(criteria)
	if err != nil {
		return utils.HTTPError(err, http.StatusServiceUnavailable)
	}
	defer s.unsubscribe(sub)

	var (
		replay  []*events.FilteredEvent
		lastSeq uint64
	)
	if pos != nil {
		if replay, err = s.backtrace(req.Context(), criteria, *pos); err != nil {
			return err
		}
		lastSeq = *pos
		if n := len(replay); n > 0 {
			lastSeq = replay[n-1].Meta.Seq
		}
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	s.pipe(conn, sub, replay, lastSeq)
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, sub *subscriber, replay []*events.FilteredEvent, lastSeq uint64) {
	defer conn.Close()

	closed := make(chan struct{})
	// start read loop to handle close event and pongs
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Debug("websocket read", "id", sub.id, "err", err)
				return
			}
		}
	}()

	write := func(fe *events.FilteredEvent) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(&Message{sub.id, fe})
	}
	for _, fe := range replay {
		if err := write(fe); err != nil {
			return
		}
	}

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server closed"), time.Now().Add(writeWait))
			return
		case <-closed:
			return
		case <-sub.dropped:
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too slow"), time.Now().Add(writeWait))
			return
		case receipt := <-sub.ch:
			if receipt.Seq <= lastSeq {
				continue
			}
			lastSeq = receipt.Seq
			for _, fe := range events.ConvertReceipt(receipt) {
				if !match(sub.criteria, fe) {
					continue
				}
				if err := write(fe); err != nil {
					logger.Debug("websocket write", "id", sub.id, "err", err)
					return
				}
			}
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (s *Subscriptions) Close() {
	s.lock.Lock()
	if s.closed {
		s.lock.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.lock.Unlock()

	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubjectEvent))
}
