package myfin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/bankrates/storage/types"
)

var (
	errMissingBankName = errors.New("missing bank name")
	errMissingLink     = errors.New("missing bank link")
	errInvalidLink     = errors.New("invalid bank link")
	errMissingTime     = errors.New("missing update time")
	errInvalidQuote    = errors.New("invalid quote value")
)

// parseRateTable extracts the bank rates from the listing page HTML.
// Malformed rows are skipped on their own; a page without the
// rate table yields no records
func (p *Provider) parseRateTable(html string) []*types.Rate {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logger.Error(
			"unable to construct query doc",
			"err", err,
		)

		return nil
	}

	body := doc.Find("table.content_table tbody")
	if body.Length() == 0 {
		p.logger.Error("rate table missing from page")

		return nil
	}

	var rates []*types.Rate

	body.Find("tr").Each(func(_ int, row *goquery.Selection) {
		rate, err := p.parseRateRow(row)
		if err != nil {
			p.logger.Warn(
				"skipping rate row",
				"err", err,
			)

			return
		}

		rates = append(rates, rate)
	})

	return rates
}

// parseRateRow extracts a single bank's rates from a table row
func (p *Provider) parseRateRow(row *goquery.Selection) (*types.Rate, error) {
	bankName := strings.TrimSpace(row.Find("td.bank_name").First().Text())
	if bankName == "" {
		return nil, errMissingBankName
	}

	href, ok := row.Find("a").First().Attr("href")
	if !ok {
		return nil, fmt.Errorf("%w for %s", errMissingLink, bankName)
	}

	bankEN, err := bankIDFromHref(href)
	if err != nil {
		return nil, fmt.Errorf("unable to parse link for %s: %w", bankName, err)
	}

	usdBuy, err := parseQuoteCell(row, "USD", 0)
	if err != nil {
		return nil, fmt.Errorf("unable to parse USD buy rate for %s: %w", bankName, err)
	}

	usdSell, err := parseQuoteCell(row, "USD", 1)
	if err != nil {
		return nil, fmt.Errorf("unable to parse USD sell rate for %s: %w", bankName, err)
	}

	eurBuy, err := parseQuoteCell(row, "EUR", 0)
	if err != nil {
		return nil, fmt.Errorf("unable to parse EUR buy rate for %s: %w", bankName, err)
	}

	eurSell, err := parseQuoteCell(row, "EUR", 1)
	if err != nil {
		return nil, fmt.Errorf("unable to parse EUR sell rate for %s: %w", bankName, err)
	}

	updateTime := strings.TrimSpace(row.Find("time").First().Text())
	if updateTime == "" {
		return nil, fmt.Errorf("%w for %s", errMissingTime, bankName)
	}

	return &types.Rate{
		BankName:   bankName,
		BankEN:     bankEN,
		Link:       p.baseURL + href,
		USDBuy:     usdBuy,
		USDSell:    usdSell,
		EURBuy:     eurBuy,
		EURSell:    eurSell,
		UpdateTime: updateTime,
	}, nil
}

// bankIDFromHref derives the bank ID from the detail page link.
// The ID is the second path segment, ex. /bank/alfabank -> "alfabank"
func bankIDFromHref(href string) (string, error) {
	parts := strings.Split(href, "/")
	if len(parts) < 3 || parts[2] == "" {
		return "", fmt.Errorf("%w: %q", errInvalidLink, href)
	}

	return parts[2], nil
}

// parseQuoteCell parses the buy (0) or sell (1) quote cell for the currency
func parseQuoteCell(row *goquery.Selection, currency string, idx int) (float64, error) {
	cell := row.Find("td." + currency).Eq(idx)
	if cell.Length() == 0 {
		return 0, fmt.Errorf("%w: missing cell %d", errInvalidQuote, idx)
	}

	return parseQuote(cell.Text())
}

// parseQuote parses a single decimal quote value,
// normalizing the decimal comma
func parseQuote(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errInvalidQuote
	}

	s = strings.ReplaceAll(s, ",", ".")

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errInvalidQuote, s)
	}

	return f, nil
}
