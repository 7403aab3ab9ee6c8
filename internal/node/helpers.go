package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spacefund-io/spacefund/config"
	"github.com/spacefund-io/spacefund/internal/ledger"
	"github.com/spacefund-io/spacefund/internal/storage"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// resolveDeployment loads the deployment file from the network data
// directory if one exists, otherwise writes the built-in deployment for
// the configured network so operators can inspect it.
func resolveDeployment(cfg *config.Config) (*config.Deployment, error) {
	path := filepath.Join(cfg.NetworkDataDir(), "deployment.json")

	if _, err := os.Stat(path); err == nil {
		return config.LoadDeployment(path)
	}

	d := config.DeploymentFor(cfg.Network)
	if err := d.Save(path); err != nil {
		return nil, fmt.Errorf("write deployment file: %w", err)
	}
	return d, nil
}

// fundAllocations credits the deployment allocations exactly once.
func fundAllocations(db storage.DB, l *ledger.Ledger, d *config.Deployment, logger zerolog.Logger) error {
	funded, err := db.Has(allocFundedKey)
	if err != nil {
		return err
	}
	if funded {
		return nil
	}

	alloc, err := d.ParsedAlloc()
	if err != nil {
		return fmt.Errorf("parse allocations: %w", err)
	}
	if len(alloc) > 0 {
		if err := l.Fund(alloc); err != nil {
			return err
		}
		logger.Info().Int("accounts", len(alloc)).Msg("Deployment allocations credited")
	}

	return db.Put(allocFundedKey, []byte{1})
}
