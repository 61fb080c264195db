package commands

import (
	"fmt"
	"time"

	"github.com/bookclose/recon/internal/auditlog"
	"github.com/bookclose/recon/internal/config"
	"github.com/bookclose/recon/internal/ledger"
	"github.com/bookclose/recon/internal/session"
)

// runtimeEnv wires config, the ledger store, and the session service for
// one command invocation.
type runtimeEnv struct {
	cfg   *config.Config
	store *ledger.Store
	svc   *session.Service
}

func openRuntime(configPath string) (*runtimeEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := ledger.Open(cfg.Ledger.DatabasePath)
	if err != nil {
		return nil, err
	}

	svc := session.NewService(store, store, store, store,
		auditlog.FileLog{Dir: cfg.Ledger.DataDir},
		session.Config{
			AutoThreshold:   cfg.Matching.AutoThreshold,
			MaxPeriodDays:   cfg.Session.MaxPeriodDays,
			BatchLimit:      cfg.Import.BatchLimit,
			ChargeAccount:   cfg.Adjusting.BankChargeAccount,
			InterestAccount: cfg.Adjusting.InterestIncomeAccount,
		})

	return &runtimeEnv{cfg: cfg, store: store, svc: svc}, nil
}

func (r *runtimeEnv) Close() error {
	return r.store.Close()
}

const dateFormat = "2006-01-02"

func parseDate(flag, value string) (time.Time, error) {
	d, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --%s %q: expected YYYY-MM-DD", flag, value)
	}
	return d, nil
}
