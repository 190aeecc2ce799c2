// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/swell/api/utils"
	"github.com/vechain/swell/logdb"
	"github.com/vechain/swell/swell"
)

type Events struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Events {
	return &Events{
		db,
		logsLimit,
	}
}

func parseUint(query url.Values, key string) (*uint64, error) {
	s := query.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, key))
	}
	return &v, nil
}

// ParseCriteria reads the address and topic0..topic3 query parameters.
func ParseCriteria(query url.Values) (*logdb.EventCriteria, error) {
	var criteria logdb.EventCriteria
	if s := query.Get("address"); s != "" {
		addr, err := swell.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "address"))
		}
		criteria.Address = addr
	}
	for i := range criteria.Topics {
		key := fmt.Sprintf("topic%d", i)
		if s := query.Get(key); s != "" {
			topic, err := swell.ParseBytes32(s)
			if err != nil {
				return nil, utils.BadRequest(errors.WithMessage(err, key))
			}
			criteria.Topics[i] = &topic
		}
	}
	return &criteria, nil
}

func (e *Events) parseFilter(query url.Values) (*logdb.EventFilter, error) {
	criteria, err := ParseCriteria(query)
	if err != nil {
		return nil, err
	}
	filter := &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{criteria},
		Order:       logdb.ASC,
	}

	switch order := query.Get("order"); order {
	case "", string(logdb.ASC):
	case string(logdb.DESC):
		filter.Order = logdb.DESC
	default:
		return nil, utils.BadRequest(fmt.Errorf("order: unsupported value %q", order))
	}

	from, err := parseUint(query, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseUint(query, "to")
	if err != nil {
		return nil, err
	}
	if from != nil || to != nil {
		rng := &logdb.Range{Unit: logdb.Seq, To: math.MaxInt64}
		switch unit := query.Get("unit"); unit {
		case "", string(logdb.Seq):
		case string(logdb.Time):
			rng.Unit = logdb.Time
		default:
			return nil, utils.BadRequest(fmt.Errorf("unit: unsupported value %q", unit))
		}
		if from != nil {
			rng.From = *from
		}
		if to != nil {
			rng.To = *to
		}
		if rng.From > rng.To {
			return nil, utils.BadRequest(errors.New("to must be greater than or equal to from"))
		}
		filter.Range = rng
	}

	offset, err := parseUint(query, "offset")
	if err != nil {
		return nil, err
	}
	limit, err := parseUint(query, "limit")
	if err != nil {
		return nil, err
	}
	filter.Options = &logdb.Options{Limit: e.limit}
	if offset != nil {
		if *offset > math.MaxInt64 {
			return nil, utils.BadRequest(fmt.Errorf("offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
		}
		filter.Options.Offset = *offset
	}
	if limit != nil {
		if *limit > e.limit {
			return nil, utils.HTTPError(fmt.Errorf("limit exceeds the maximum allowed value of %d", e.limit), http.StatusForbidden)
		}
		filter.Options.Limit = *limit
	}
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req.URL.Query())
	if err != nil {
		return err
	}
	events, err := e.db.FilterEvents(req.Context(), filter)
	if err != nil {
		return err
	}
	fes := make([]*FilteredEvent, len(events))
	for i, ev := range events {
		fes[i] = ConvertEvent(ev)
	}
	return utils.WriteJSON(w, fes)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
