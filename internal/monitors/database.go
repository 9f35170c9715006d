package monitors

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const defaultTimeout = 10 * time.Second

// CheckDatabase pings the database behind conn. A zero timeout means ten seconds.
func CheckDatabase(ctx context.Context, conn *gorm.DB, timeout time.Duration) error {
	if conn == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	if timeout == 0 {
		timeout = defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
