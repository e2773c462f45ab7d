package serve

import (
	"log/slog"

	"github.com/sig-0/bankrates/ingest"
	"github.com/sig-0/bankrates/provider/myfin"
)

// defaultProviders returns the default ingestion providers
func defaultProviders(logger *slog.Logger) []ingest.Provider {
	// Bank quotes listed on ru.myfin.by
	myfinProvider := myfin.NewProvider(
		myfin.WithLogger(logger),
	)

	return []ingest.Provider{
		myfinProvider,
	}
}
