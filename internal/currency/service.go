package currency

import (
	"context"
	"strings"

	"boutique-catalog/internal/config"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service resolves the display currency of a viewer.
type Service struct {
	locator                Locator
	rates                  RateSource
	defaultCountry         string
	defaultCurrencyCountry string
	fallbackSymbol         string
	logger                 *zap.Logger
}

// NewService creates a Service from its lookups and the configured
// fallbacks.
func NewService(cfg config.CurrencyConfig, locator Locator, rates RateSource, logger *zap.Logger) *Service {
	return &Service{
		locator:                locator,
		rates:                  rates,
		defaultCountry:         strings.ToUpper(cfg.DefaultCountry),
		defaultCurrencyCountry: strings.ToUpper(cfg.DefaultCurrencyCountry),
		fallbackSymbol:         cfg.FallbackSymbol,
		logger:                 logger,
	}
}

// Quote resolves the viewer's country and the rate table concurrently and
// returns the resulting quote. A valid override country skips the
// geolocation lookup. Lookup failures degrade the quote and are logged;
// Quote never fails.
func (s *Service) Quote(ctx context.Context, ip, override string) Quote {
	var (
		country string
		rates   Rates
	)

	// A plain group: a failed rate lookup must not cancel geolocation.
	var g errgroup.Group
	g.Go(func() error {
		country = s.resolveCountry(ctx, ip, override)
		return nil
	})
	g.Go(func() error {
		r, err := s.rates.Rates(ctx)
		if err != nil {
			return err
		}
		rates = r
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("Rate table unavailable, prices will not be converted", zap.Error(err))
		rates = nil
	}

	return s.quote(country, rates)
}

func (s *Service) resolveCountry(ctx context.Context, ip, override string) string {
	if override = strings.ToUpper(strings.TrimSpace(override)); IsCountryCode(override) {
		return override
	}

	country, err := s.locator.Country(ctx, ip)
	if err != nil {
		s.logger.Warn("Geolocation failed, using default country",
			zap.String("ip", ip),
			zap.String("country", s.defaultCountry),
			zap.Error(err),
		)
		return s.defaultCountry
	}
	return country
}

func (s *Service) quote(country string, rates Rates) Quote {
	cur := ForCountry(country, s.defaultCurrencyCountry)

	rate, ok := rates[cur.Code]
	if !ok && rates != nil && cur.Code == BaseCurrency {
		rate, ok = decimal.NewFromInt(1), true
	}
	if !ok || !rate.IsPositive() {
		if rates != nil {
			s.logger.Warn("Rate table has no usable rate", zap.String("currency", cur.Code))
		}
		return Quote{
			Country:  country,
			Currency: BaseCurrency,
			Symbol:   s.fallbackSymbol,
			Rate:     decimal.NewFromInt(1),
		}
	}

	return Quote{
		Country:   country,
		Currency:  cur.Code,
		Symbol:    cur.Symbol,
		Rate:      rate,
		Converted: true,
	}
}
