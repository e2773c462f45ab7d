// Package myfin provides the bank exchange rate provider for the
// ru.myfin.by listing site.
//
// # Source
//
// Name: "myfin"
// URL: https://ru.myfin.by/currency?page=N (pages 1-4)
// Interval: 10 minutes
//
// Each listing page carries an HTML table of banks with their USD and EUR
// buy / sell quotes. Pages are collected concurrently; a failed page
// contributes no records and does not affect the others.
//
// Fetching:
//   - GET with a 10s total and 5s connect timeout
//   - Transient failures (network errors, timeouts, non-2xx statuses) are
//     retried up to 3 times with exponential backoff (2s, 4s, 8s)
//   - Retry exhaustion skips the page for the cycle
//
// Parsing:
//   - Bank rows are extracted from the page's content_table
//   - A malformed row (missing cells, unparsable quotes) is skipped on its
//     own, with the remaining rows unaffected
//   - The bank ID is derived from the bank's detail link, and later serves
//     as the reconciliation key
package myfin
