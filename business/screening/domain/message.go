package domain

import (
	"fmt"
	"html"
	"math/big"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// TimeFormat is used for alert timestamps.
const TimeFormat = "2006-01-02 15:04:05"

// SourceLabel names where estimates come from in alert headers.
const SourceLabel = "Synapse API"

// ArbitrageLink is the anchor target of the arbitrage figure.
const ArbitrageLink = "https://synapseprotocol.com"

// FormatMessages renders the HTML alert and the terminal line for a record.
func FormatMessages(ts time.Time, job Job, amountIn, amountOut, arbitrage decimal.Decimal) (htmlMsg, terminal string) {
	tokenIn := html.EscapeString(job.In.Token)
	tokenOut := html.EscapeString(job.Out.Token)

	trade := fmt.Sprintf("Sell %s %s for %s %s, %s -> %s",
		Grouped(amountIn, -1), tokenIn,
		Grouped(amountOut, 2), tokenOut,
		html.EscapeString(job.In.Name), html.EscapeString(job.Out.Name))

	htmlMsg = fmt.Sprintf("%s - %s\n%s\n--->Arbitrage: <a href='%s'>%s %s</a>",
		ts.Format(TimeFormat), SourceLabel, trade,
		ArbitrageLink, Grouped(arbitrage, 2), tokenOut)

	terminal = fmt.Sprintf("Sell %s %s for %s %s, %s -> %s; --->Arbitrage: %s %s",
		Grouped(amountIn, -1), job.In.Token,
		Grouped(amountOut, 2), job.Out.Token,
		job.In.Name, job.Out.Name,
		Grouped(arbitrage, job.Precision()), job.Out.Token)

	return htmlMsg, terminal
}

// Grouped renders d with thousands separators, "-1234567.891" becoming
// "-1,234,567.891". Negative places keep d's own exponent.
func Grouped(d decimal.Decimal, places int32) string {
	s := d.String()
	if places >= 0 {
		s = d.StringFixed(places)
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	n, ok := new(big.Int).SetString(intPart, 10)
	if !ok {
		return sign + s
	}
	return sign + humanize.BigComma(n) + frac
}
