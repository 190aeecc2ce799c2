// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"math"
	"strconv"

	"github.com/vechain/swell/metrics"
)

const logdbMaxSeq = math.MaxInt64

var metricSubscriptionCount = metrics.LazyLoadGauge("api_active_subscription_count")

func parsePos(s string) (uint64, error) {
	return strconv.ParseUint(s, 0, 64)
}
